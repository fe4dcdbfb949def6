package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// синтаксис скриптов событий
	SynInfo             Code = 2000
	SynUnexpectedToken  Code = 2001
	SynExpectIdentifier Code = 2002
	SynUnknownEvent     Code = 2003
	SynTrailingTokens   Code = 2004
	SynExpectKeyword    Code = 2005
	SynEmptyCapture     Code = 2006
	SynUnknownChar      Code = 2007
	SynUnknownClosure   Code = 2008

	// нарушения правил владения
	BorrowInfo               Code = 3000
	BorrowDuplicateBinding   Code = 3001
	BorrowUseAfterMove       Code = 3002
	BorrowUseAfterDrop       Code = 3003
	BorrowMovedWhileBorrowed Code = 3004
	BorrowConflict           Code = 3005
	BorrowNotMutable         Code = 3006
	BorrowUnknownBorrow      Code = 3007
	BorrowScopeMismatch      Code = 3008
	BorrowUnknownBinding     Code = 3009
	BorrowDangling           Code = 3010

	IOLoadFileError Code = 4001
)

var codeDescription = map[Code]string{
	UnknownCode:              "Unknown error",
	SynInfo:                  "Syntax information",
	SynUnexpectedToken:       "Unexpected token",
	SynExpectIdentifier:      "Expected identifier",
	SynUnknownEvent:          "Unknown event keyword",
	SynTrailingTokens:        "Unexpected tokens after event",
	SynExpectKeyword:         "Expected keyword",
	SynEmptyCapture:          "Closure captures nothing",
	SynUnknownChar:           "Unknown character",
	SynUnknownClosure:        "Unknown closure",
	BorrowInfo:               "Ownership information",
	BorrowDuplicateBinding:   "Binding is already live",
	BorrowUseAfterMove:       "Use of moved value",
	BorrowUseAfterDrop:       "Use of dropped value",
	BorrowMovedWhileBorrowed: "Move while borrowed",
	BorrowConflict:           "Borrow conflict",
	BorrowNotMutable:         "Mutation of immutable value",
	BorrowUnknownBorrow:      "Borrow is not live",
	BorrowScopeMismatch:      "Scope mismatch",
	BorrowUnknownBinding:     "Unknown binding",
	BorrowDangling:           "Borrowed value does not live long enough",
	IOLoadFileError:          "Failed to load file",
}

// ID returns the stable textual identifier, e.g. BRW3005.
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("BRW%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	if desc, ok := codeDescription[c]; ok {
		return desc
	}
	return codeDescription[UnknownCode]
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
