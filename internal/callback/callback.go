// Package callback encodes bot actions into inline-button payloads and back.
//
// A payload is a key followed by positional parameters, joined by "|":
//
//	ALL|3  LET|A|0  FIND|1a2b3c4d|2  QUIZ|SHOW|5  QUIZ|NEXT  QUIZ|DEL|5
//	EDIT|PICK|5  EDIT|FIELD|example|5  MENU|list  CANCEL  NOP
//
// Letters, tokens, field names and menu items never contain the separator;
// ids and pages are decimal integers.
package callback

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/m3rciful/vocabot/internal/entry"
)

// Sep separates payload fields.
const Sep = "|"

// MaxLen is Telegram's limit for callback_data in bytes.
const MaxLen = 64

// Keys are the routing keys registered with the bot registry.
const (
	KeyAll    = "ALL"
	KeyLetter = "LET"
	KeyFind   = "FIND"
	KeyQuiz   = "QUIZ"
	KeyEdit   = "EDIT"
	KeyMenu   = "MENU"
	KeyCancel = "CANCEL"
	KeyNop    = "NOP"
)

// Keys lists every routing key.
var Keys = []string{KeyAll, KeyLetter, KeyFind, KeyQuiz, KeyEdit, KeyMenu, KeyCancel, KeyNop}

const (
	quizShow   = "SHOW"
	quizNext   = "NEXT"
	quizDelete = "DEL"
	editPick   = "PICK"
	editField  = "FIELD"
)

// ErrMalformed is returned by Decode for payloads that do not describe a known action.
var ErrMalformed = errors.New("malformed callback payload")

// Action is one of the concrete action types below.
type Action interface {
	action()
}

// ListAll renders a page of the whole dictionary.
type ListAll struct{ Page int }

// ListLetter renders a page of entries starting with Letter.
type ListLetter struct {
	Letter string
	Page   int
}

// Search renders a page of the search remembered under Token.
type Search struct {
	Token string
	Page  int
}

// QuizShow reveals the translation of a quiz card.
type QuizShow struct{ ID int64 }

// QuizNext draws another card.
type QuizNext struct{}

// QuizDelete removes the card's entry and draws another card.
type QuizDelete struct{ ID int64 }

// EditPick selects the entry to edit.
type EditPick struct{ ID int64 }

// EditField selects which field of the entry to edit.
type EditField struct {
	Field entry.Field
	ID    int64
}

// Menu opens a home menu item.
type Menu struct{ Item MenuItem }

// Cancel aborts the current flow.
type Cancel struct{}

// Nop is carried by decorative buttons.
type Nop struct{}

func (ListAll) action()    {}
func (ListLetter) action() {}
func (Search) action()     {}
func (QuizShow) action()   {}
func (QuizNext) action()   {}
func (QuizDelete) action() {}
func (EditPick) action()   {}
func (EditField) action()  {}
func (Menu) action()       {}
func (Cancel) action()     {}
func (Nop) action()        {}

// MenuItem is a home menu entry.
type MenuItem string

const (
	MenuList    MenuItem = "list"
	MenuLetters MenuItem = "letters"
	MenuBulk    MenuItem = "bulk"
	MenuFind    MenuItem = "find"
	MenuEdit    MenuItem = "edit"
	MenuDelete  MenuItem = "delete"
	MenuQuiz    MenuItem = "quiz"
	MenuHome    MenuItem = "home"
)

// MenuItems lists the items in display order.
var MenuItems = []MenuItem{MenuList, MenuLetters, MenuBulk, MenuFind, MenuEdit, MenuDelete, MenuQuiz, MenuHome}

func parseMenuItem(s string) (MenuItem, bool) {
	for _, it := range MenuItems {
		if string(it) == s {
			return it, true
		}
	}
	return "", false
}

// Encode renders a into its payload form.
func Encode(a Action) (string, error) {
	var parts []string
	switch v := a.(type) {
	case ListAll:
		if v.Page < 0 {
			return "", fmt.Errorf("encode %s: negative page", KeyAll)
		}
		parts = []string{KeyAll, strconv.Itoa(v.Page)}
	case ListLetter:
		l, ok := entry.ParseLetter(v.Letter)
		if !ok || l != v.Letter {
			return "", fmt.Errorf("encode %s: invalid letter %q", KeyLetter, v.Letter)
		}
		if v.Page < 0 {
			return "", fmt.Errorf("encode %s: negative page", KeyLetter)
		}
		parts = []string{KeyLetter, v.Letter, strconv.Itoa(v.Page)}
	case Search:
		if !validToken(v.Token) {
			return "", fmt.Errorf("encode %s: invalid token %q", KeyFind, v.Token)
		}
		if v.Page < 0 {
			return "", fmt.Errorf("encode %s: negative page", KeyFind)
		}
		parts = []string{KeyFind, v.Token, strconv.Itoa(v.Page)}
	case QuizShow:
		if v.ID <= 0 {
			return "", fmt.Errorf("encode %s: invalid id %d", KeyQuiz, v.ID)
		}
		parts = []string{KeyQuiz, quizShow, strconv.FormatInt(v.ID, 10)}
	case QuizNext:
		parts = []string{KeyQuiz, quizNext}
	case QuizDelete:
		if v.ID <= 0 {
			return "", fmt.Errorf("encode %s: invalid id %d", KeyQuiz, v.ID)
		}
		parts = []string{KeyQuiz, quizDelete, strconv.FormatInt(v.ID, 10)}
	case EditPick:
		if v.ID <= 0 {
			return "", fmt.Errorf("encode %s: invalid id %d", KeyEdit, v.ID)
		}
		parts = []string{KeyEdit, editPick, strconv.FormatInt(v.ID, 10)}
	case EditField:
		if _, err := entry.ParseField(string(v.Field)); err != nil {
			return "", fmt.Errorf("encode %s: %w", KeyEdit, err)
		}
		if v.ID <= 0 {
			return "", fmt.Errorf("encode %s: invalid id %d", KeyEdit, v.ID)
		}
		parts = []string{KeyEdit, editField, string(v.Field), strconv.FormatInt(v.ID, 10)}
	case Menu:
		if _, ok := parseMenuItem(string(v.Item)); !ok {
			return "", fmt.Errorf("encode %s: unknown item %q", KeyMenu, v.Item)
		}
		parts = []string{KeyMenu, string(v.Item)}
	case Cancel:
		parts = []string{KeyCancel}
	case Nop:
		parts = []string{KeyNop}
	default:
		return "", fmt.Errorf("encode: unsupported action %T", a)
	}

	out := strings.Join(parts, Sep)
	if len(out) > MaxLen {
		return "", fmt.Errorf("encode: payload is %d bytes, limit %d", len(out), MaxLen)
	}
	return out, nil
}

// MustEncode is Encode for actions built from values that are already validated.
func MustEncode(a Action) string {
	s, err := Encode(a)
	if err != nil {
		panic(err)
	}
	return s
}

// Decode parses a payload. It never panics; every failure wraps ErrMalformed.
func Decode(data string) (Action, error) {
	if data == "" || len(data) > MaxLen {
		return nil, malformed(data, "bad length")
	}
	parts := strings.Split(data, Sep)
	key, args := parts[0], parts[1:]

	switch key {
	case KeyAll:
		if len(args) != 1 {
			return nil, malformed(data, "want 1 param")
		}
		page, err := parsePage(args[0])
		if err != nil {
			return nil, malformed(data, err.Error())
		}
		return ListAll{Page: page}, nil

	case KeyLetter:
		if len(args) != 2 {
			return nil, malformed(data, "want 2 params")
		}
		l, ok := entry.ParseLetter(args[0])
		if !ok || l != args[0] {
			return nil, malformed(data, "bad letter")
		}
		page, err := parsePage(args[1])
		if err != nil {
			return nil, malformed(data, err.Error())
		}
		return ListLetter{Letter: l, Page: page}, nil

	case KeyFind:
		if len(args) != 2 {
			return nil, malformed(data, "want 2 params")
		}
		if !validToken(args[0]) {
			return nil, malformed(data, "bad token")
		}
		page, err := parsePage(args[1])
		if err != nil {
			return nil, malformed(data, err.Error())
		}
		return Search{Token: args[0], Page: page}, nil

	case KeyQuiz:
		if len(args) == 0 {
			return nil, malformed(data, "missing sub-action")
		}
		switch args[0] {
		case quizNext:
			// Older keyboards carried a dummy id.
			if len(args) > 2 {
				return nil, malformed(data, "too many params")
			}
			return QuizNext{}, nil
		case quizShow, quizDelete:
			if len(args) != 2 {
				return nil, malformed(data, "want id")
			}
			id, err := parseID(args[1])
			if err != nil {
				return nil, malformed(data, err.Error())
			}
			if args[0] == quizShow {
				return QuizShow{ID: id}, nil
			}
			return QuizDelete{ID: id}, nil
		}
		return nil, malformed(data, "unknown quiz action")

	case KeyEdit:
		if len(args) == 0 {
			return nil, malformed(data, "missing sub-action")
		}
		switch args[0] {
		case editPick:
			if len(args) != 2 {
				return nil, malformed(data, "want id")
			}
			id, err := parseID(args[1])
			if err != nil {
				return nil, malformed(data, err.Error())
			}
			return EditPick{ID: id}, nil
		case editField:
			if len(args) != 3 {
				return nil, malformed(data, "want field and id")
			}
			f, err := entry.ParseField(args[1])
			if err != nil || string(f) != args[1] {
				return nil, malformed(data, "bad field")
			}
			id, err := parseID(args[2])
			if err != nil {
				return nil, malformed(data, err.Error())
			}
			return EditField{Field: f, ID: id}, nil
		}
		return nil, malformed(data, "unknown edit action")

	case KeyMenu:
		if len(args) != 1 {
			return nil, malformed(data, "want 1 param")
		}
		item, ok := parseMenuItem(args[0])
		if !ok {
			return nil, malformed(data, "unknown menu item")
		}
		return Menu{Item: item}, nil

	case KeyCancel:
		if len(args) != 0 {
			return nil, malformed(data, "unexpected params")
		}
		return Cancel{}, nil

	case KeyNop:
		return Nop{}, nil
	}
	return nil, malformed(data, "unknown key")
}

func malformed(data, reason string) error {
	return fmt.Errorf("%w: %q: %s", ErrMalformed, data, reason)
}

func parsePage(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("bad page %q", s)
	}
	return n, nil
}

func parseID(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("bad id %q", s)
	}
	return n, nil
}

// validToken accepts 1..16 lowercase hex characters.
func validToken(s string) bool {
	if s == "" || len(s) > 16 {
		return false
	}
	for _, r := range s {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
			return false
		}
	}
	return true
}
