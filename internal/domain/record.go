package domain

// Named is a keyed documentation entry. For exceptions Name holds the cref.
type Named struct {
	Name    string  `json:"name" yaml:"name"`
	Content Content `json:"content,omitempty" yaml:"content,omitempty"`
}

// Record is the resolved documentation of one symbol.
type Record struct {
	Summary    Content `json:"summary,omitempty" yaml:"summary,omitempty"`
	Remarks    Content `json:"remarks,omitempty" yaml:"remarks,omitempty"`
	Returns    Content `json:"returns,omitempty" yaml:"returns,omitempty"`
	Example    Content `json:"example,omitempty" yaml:"example,omitempty"`
	Params     []Named `json:"params,omitempty" yaml:"params,omitempty"`
	Typeparams []Named `json:"typeparams,omitempty" yaml:"typeparams,omitempty"`
	Exceptions []Named `json:"exceptions,omitempty" yaml:"exceptions,omitempty"`
}

func (r Record) IsEmpty() bool {
	return len(r.Summary) == 0 &&
		len(r.Remarks) == 0 &&
		len(r.Returns) == 0 &&
		len(r.Example) == 0 &&
		len(r.Params) == 0 &&
		len(r.Typeparams) == 0 &&
		len(r.Exceptions) == 0
}
