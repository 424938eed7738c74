package repl

// EntryKind tells the view how to style a transcript entry
type EntryKind int

const (
	EntryInput EntryKind = iota
	EntryAST
	EntryDiagnostic
	EntryEnv
	EntryInfo
	EntryError
)

// Entry is one block of transcript output
type Entry struct {
	Kind EntryKind
	Text string
}

// evalResultMsg carries the outcome of a submitted line
type evalResultMsg struct {
	result *Result
	err    error
}
