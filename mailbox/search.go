package mailbox

import (
	"context"
	"strconv"
	"strings"
	"time"

	imap "github.com/emersion/go-imap"

	"github.com/sageimap/goimap/connection"
	"github.com/sageimap/goimap/internal/ierr"
	"github.com/sageimap/goimap/messageset"
	"github.com/sageimap/goimap/searchcriteria"
)

// Search issues a sequence-number SEARCH for criteria against the currently
// selected mailbox, returning the matches as a MessageSet. Grounded on the
// teacher's services/imap/folder.go, which always builds an
// imap.NewSearchCriteria() struct and calls the emersion client directly
// rather than handing it a raw search string; toIMAPCriteria bridges our
// string-algebra searchcriteria.Criteria (modeled on
// sage_imap/helpers/search.py) onto that struct.
func (s *Service) Search(ctx context.Context, criteria searchcriteria.Criteria) (messageset.MessageSet, error) {
	return s.search(ctx, criteria, false)
}

// UidSearch is Search's UID-addressed counterpart.
func (s *Service) UidSearch(ctx context.Context, criteria searchcriteria.Criteria) (messageset.MessageSet, error) {
	return s.search(ctx, criteria, true)
}

func (s *Service) search(ctx context.Context, criteria searchcriteria.Criteria, uid bool) (messageset.MessageSet, error) {
	if err := s.requireSelected(); err != nil {
		return messageset.MessageSet{}, err
	}
	ic, err := toIMAPCriteria(criteria)
	if err != nil {
		return messageset.MessageSet{}, err
	}

	var ids []uint32
	opName := "Search"
	err = s.track(ctx, opName, func() error {
		return s.conn.Do(ctx, opName, func(sess connection.Session) error {
			var searchErr error
			if uid {
				ids, searchErr = sess.UidSearch(ic)
			} else {
				ids, searchErr = sess.Search(ic)
			}
			return searchErr
		})
	})
	if err != nil {
		return messageset.MessageSet{}, ierr.Operation("SEARCH failed", "", err)
	}

	if len(ids) == 0 {
		return messageset.MessageSet{}, nil
	}
	if uid {
		return messageset.FromUIDs(ids, s.currentSelection)
	}
	set, _, err := messageset.FromSequenceNumbers(ids, s.currentSelection)
	return set, err
}

// toIMAPCriteria parses a searchcriteria.Criteria (the "(a b)"/"(OR a b)"
// /"NOT (a)"/leaf string form this package's algebra produces) into the
// structured *imap.SearchCriteria the wire client expects. It understands
// exactly the grammar searchcriteria.go emits; it is not a general IMAP
// search-string parser.
func toIMAPCriteria(c searchcriteria.Criteria) (*imap.SearchCriteria, error) {
	toks, err := tokenize(string(c))
	if err != nil {
		return nil, err
	}
	crit, rest, err := parseExpr(toks)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, ierr.Configuration("trailing tokens after search criteria expression")
	}
	return crit, nil
}

func tokenize(s string) ([]string, error) {
	var toks []string
	var cur strings.Builder
	inQuote := false
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case inQuote:
			cur.WriteRune(r)
			if r == '\\' && i+1 < len(runes) {
				i++
				cur.WriteRune(runes[i])
				continue
			}
			if r == '"' {
				inQuote = false
			}
		case r == '"':
			cur.WriteRune(r)
			inQuote = true
		case r == '(' || r == ')':
			flush()
			toks = append(toks, string(r))
		case r == ' ':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	if inQuote {
		return nil, ierr.Configuration("unterminated quoted string in search criteria")
	}
	return toks, nil
}

func unquote(tok string) string {
	if len(tok) >= 2 && tok[0] == '"' && tok[len(tok)-1] == '"' {
		inner := tok[1 : len(tok)-1]
		inner = strings.ReplaceAll(inner, `\"`, `"`)
		inner = strings.ReplaceAll(inner, `\\`, `\`)
		return inner
	}
	return tok
}

// parseExpr parses one criteria term and returns the remaining tokens.
func parseExpr(toks []string) (*imap.SearchCriteria, []string, error) {
	if len(toks) == 0 {
		return nil, nil, ierr.Configuration("empty search criteria expression")
	}
	head := toks[0]
	switch head {
	case "(":
		return parseParenGroup(toks[1:])
	case "NOT":
		if len(toks) < 2 || toks[1] != "(" {
			return nil, nil, ierr.Configuration("NOT must be followed by '('")
		}
		inner, rest, err := parseParenGroup(toks[2:])
		if err != nil {
			return nil, nil, err
		}
		return &imap.SearchCriteria{Not: []*imap.SearchCriteria{inner}}, rest, nil
	default:
		return parseLeaf(toks)
	}
}

// parseParenGroup consumes tokens up to and including the matching ")".
// If the first token inside is "OR", it builds a binary Or node (right-
// associatively nested, matching searchcriteria.Or); otherwise every term
// inside is ANDed by merging into one *imap.SearchCriteria.
func parseParenGroup(toks []string) (*imap.SearchCriteria, []string, error) {
	if len(toks) > 0 && toks[0] == "OR" {
		left, rest, err := parseExpr(toks[1:])
		if err != nil {
			return nil, nil, err
		}
		right, rest, err := parseExpr(rest)
		if err != nil {
			return nil, nil, err
		}
		if len(rest) == 0 || rest[0] != ")" {
			return nil, nil, ierr.Configuration("expected ')' closing OR group")
		}
		return &imap.SearchCriteria{Or: [][2]*imap.SearchCriteria{{left, right}}}, rest[1:], nil
	}

	merged := &imap.SearchCriteria{}
	rest := toks
	for {
		if len(rest) == 0 {
			return nil, nil, ierr.Configuration("unterminated search criteria group")
		}
		if rest[0] == ")" {
			return merged, rest[1:], nil
		}
		term, remaining, err := parseExpr(rest)
		if err != nil {
			return nil, nil, err
		}
		mergeInto(merged, term)
		rest = remaining
	}
}

func mergeInto(dst, src *imap.SearchCriteria) {
	dst.WithFlags = append(dst.WithFlags, src.WithFlags...)
	dst.WithoutFlags = append(dst.WithoutFlags, src.WithoutFlags...)
	dst.Body = append(dst.Body, src.Body...)
	dst.Text = append(dst.Text, src.Text...)
	dst.Not = append(dst.Not, src.Not...)
	dst.Or = append(dst.Or, src.Or...)
	if !src.Since.IsZero() {
		dst.Since = src.Since
	}
	if !src.Before.IsZero() {
		dst.Before = src.Before
	}
	if src.Header != nil {
		if dst.Header == nil {
			dst.Header = map[string][]string{}
		}
		for k, v := range src.Header {
			dst.Header[k] = append(dst.Header[k], v...)
		}
	}
}

func parseLeaf(toks []string) (*imap.SearchCriteria, []string, error) {
	head := toks[0]
	switch head {
	case "ALL":
		return &imap.SearchCriteria{}, toks[1:], nil
	case "SEEN", "ANSWERED", "FLAGGED", "DELETED", "DRAFT":
		return &imap.SearchCriteria{WithFlags: []string{toIMAPFlag(head)}}, toks[1:], nil
	case "UNSEEN":
		return &imap.SearchCriteria{WithoutFlags: []string{imap.SeenFlag}}, toks[1:], nil
	case "UNANSWERED":
		return &imap.SearchCriteria{WithoutFlags: []string{imap.AnsweredFlag}}, toks[1:], nil
	case "UNFLAGGED":
		return &imap.SearchCriteria{WithoutFlags: []string{imap.FlaggedFlag}}, toks[1:], nil
	case "UNDELETED":
		return &imap.SearchCriteria{WithoutFlags: []string{imap.DeletedFlag}}, toks[1:], nil
	case "BEFORE", "ON", "SINCE":
		if len(toks) < 2 {
			return nil, nil, ierr.Configuration(head + " requires a date argument")
		}
		t, err := time.Parse("02-Jan-2006", toks[1])
		if err != nil {
			return nil, nil, ierr.Configuration("invalid date in " + head + " criteria")
		}
		switch head {
		case "BEFORE":
			return &imap.SearchCriteria{Before: t}, toks[2:], nil
		case "SINCE":
			return &imap.SearchCriteria{Since: t}, toks[2:], nil
		default: // ON: since-inclusive through the start of the next day
			return &imap.SearchCriteria{Since: t, Before: t.AddDate(0, 0, 1)}, toks[2:], nil
		}
	case "FROM", "TO", "SUBJECT":
		if len(toks) < 2 {
			return nil, nil, ierr.Configuration(head + " requires a value")
		}
		field := map[string]string{"FROM": "From", "TO": "To", "SUBJECT": "Subject"}[head]
		return &imap.SearchCriteria{Header: map[string][]string{field: {unquote(toks[1])}}}, toks[2:], nil
	case "BODY":
		if len(toks) < 2 {
			return nil, nil, ierr.Configuration("BODY requires a value")
		}
		return &imap.SearchCriteria{Body: []string{unquote(toks[1])}}, toks[2:], nil
	case "TEXT":
		if len(toks) < 2 {
			return nil, nil, ierr.Configuration("TEXT requires a value")
		}
		return &imap.SearchCriteria{Text: []string{unquote(toks[1])}}, toks[2:], nil
	case "HEADER":
		if len(toks) < 3 {
			return nil, nil, ierr.Configuration("HEADER requires a field and a value")
		}
		return &imap.SearchCriteria{Header: map[string][]string{unquote(toks[1]): {unquote(toks[2])}}}, toks[3:], nil
	default:
		return nil, nil, ierr.Configuration("unrecognized search criteria token " + strconv.Quote(head))
	}
}

func toIMAPFlag(word string) string {
	switch word {
	case "SEEN":
		return imap.SeenFlag
	case "ANSWERED":
		return imap.AnsweredFlag
	case "FLAGGED":
		return imap.FlaggedFlag
	case "DELETED":
		return imap.DeletedFlag
	case "DRAFT":
		return imap.DraftFlag
	default:
		return word
	}
}
