package capability

// Operation is a request to the dispatcher: ReadURL or WriteURL.
type Operation interface {
	Case() string
	isOperation()
}

// ReadURL reads the identifier stored on a tag.
type ReadURL struct{}

// WriteURL stores Identifier on a tag.
type WriteURL struct {
	Identifier string
}

func (ReadURL) Case() string  { return "ReadUrl" }
func (WriteURL) Case() string { return "WriteUrl" }

func (ReadURL) isOperation()  {}
func (WriteURL) isOperation() {}

// Output is the result of one operation: URL, Written, Cancelled or Error.
type Output interface {
	Case() string
	isOutput()
}

// URL is a successful read.
type URL struct {
	Value string
}

// Written is a successful write.
type Written struct{}

// Cancelled means the user dismissed the prompt or the session timed out.
type Cancelled struct{}

// Error is any other failure. Message is for people; do not match on it.
type Error struct {
	Message string
}

func (URL) Case() string       { return "Url" }
func (Written) Case() string   { return "Written" }
func (Cancelled) Case() string { return "Cancelled" }
func (Error) Case() string     { return "Error" }

func (URL) isOutput()       {}
func (Written) isOutput()   {}
func (Cancelled) isOutput() {}
func (Error) isOutput()     {}
