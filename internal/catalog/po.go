package catalog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Message is one msgid/msgstr block as it appears in a PO file.
type Message struct {
	Comments      []string // "# " translator comments
	Extracted     []string // "#." comments
	References    []string // "#:" lines, unsplit
	Flags         []string // "#," flags
	PreviousMsgID string   // "#| msgid"

	MsgCtxt      string
	MsgID        string
	MsgIDPlural  string
	MsgStr       string
	MsgStrPlural map[int]string

	Obsolete bool

	// Line is the 1-based line of the msgid keyword in the parsed file, or
	// zero for a message that was added in memory.
	Line int
}

// IsHeader reports whether the message is the metadata entry.
func (m *Message) IsHeader() bool {
	return m.MsgID == "" && !m.Obsolete
}

// File is a parsed PO file. Messages keep their on-disk order.
type File struct {
	Header   *Message
	Messages []*Message
	// Trailing holds comments after the last message that belong to no entry.
	Trailing *Message
}

// Lookup finds a live message by msgid in the default context.
func (f *File) Lookup(msgid string) *Message {
	for _, m := range f.Messages {
		if m.MsgID == msgid && m.MsgCtxt == "" && !m.Obsolete {
			return m
		}
	}
	return nil
}

// Set stores a translation, appending a new message when msgid is unknown.
// A plural message receives it as its first form.
func (f *File) Set(msgid, msgstr string) *Message {
	if m := f.Lookup(msgid); m != nil {
		if m.MsgIDPlural == "" {
			m.MsgStr = msgstr
			return m
		}
		if m.MsgStrPlural == nil {
			m.MsgStrPlural = make(map[int]string)
		}
		m.MsgStrPlural[0] = msgstr
		return m
	}
	m := &Message{MsgID: msgid, MsgStr: msgstr}
	f.Messages = append(f.Messages, m)
	return m
}

// Parse reads a PO file.
func Parse(r io.Reader) (*File, error) {
	f := &File{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var cur *Message
	var field string
	lineNum := 0

	// Comments not yet followed by a keyword stay with the next message.
	flush := func() {
		if cur == nil || field == "" {
			return
		}
		if cur.IsHeader() && f.Header == nil {
			f.Header = cur
		} else {
			f.Messages = append(f.Messages, cur)
		}
		cur = nil
		field = ""
	}

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if cur == nil {
			cur = &Message{}
		}

		obsolete := false
		if rest, ok := strings.CutPrefix(line, "#~"); ok {
			obsolete = true
			line = strings.TrimLeft(rest, " ")
			if line == "" {
				continue
			}
		}

		if strings.HasPrefix(line, "#") {
			// A comment after msgstr starts the next message.
			if field != "" {
				flush()
				cur = &Message{}
			}
			parseComment(cur, line)
			cur.Obsolete = cur.Obsolete || obsolete
			continue
		}

		keyword, rest, _ := strings.Cut(line, " ")
		switch {
		case keyword == "msgctxt":
			cur.MsgCtxt = unquote(rest)
			field = keyword
		case keyword == "msgid":
			if field == "msgstr" || strings.HasPrefix(field, "msgstr[") {
				flush()
				cur = &Message{}
			}
			cur.MsgID = unquote(rest)
			cur.Line = lineNum
			field = keyword
		case keyword == "msgid_plural":
			cur.MsgIDPlural = unquote(rest)
			field = keyword
		case keyword == "msgstr":
			cur.MsgStr = unquote(rest)
			field = keyword
		case strings.HasPrefix(keyword, "msgstr["):
			var idx int
			if _, err := fmt.Sscanf(keyword, "msgstr[%d]", &idx); err != nil {
				return nil, fmt.Errorf("line %d: invalid plural index %q", lineNum, keyword)
			}
			if cur.MsgStrPlural == nil {
				cur.MsgStrPlural = make(map[int]string)
			}
			cur.MsgStrPlural[idx] = unquote(rest)
			field = keyword
		case strings.HasPrefix(strings.TrimSpace(line), `"`):
			appendContinuation(cur, field, unquote(line))
		default:
			return nil, fmt.Errorf("line %d: unexpected %q", lineNum, line)
		}
		cur.Obsolete = cur.Obsolete || obsolete
	}
	if cur != nil && field == "" {
		f.Trailing = cur
		cur = nil
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading PO file: %w", err)
	}
	return f, nil
}

func parseComment(m *Message, line string) {
	switch {
	case strings.HasPrefix(line, "#:"):
		m.References = append(m.References, strings.TrimSpace(line[2:]))
	case strings.HasPrefix(line, "#,"):
		for _, flag := range strings.Split(line[2:], ",") {
			if flag = strings.TrimSpace(flag); flag != "" {
				m.Flags = append(m.Flags, flag)
			}
		}
	case strings.HasPrefix(line, "#."):
		m.Extracted = append(m.Extracted, strings.TrimSpace(line[2:]))
	case strings.HasPrefix(line, "#|"):
		prev := strings.TrimSpace(line[2:])
		if rest, ok := strings.CutPrefix(prev, "msgid "); ok {
			m.PreviousMsgID = unquote(rest)
		}
	default:
		m.Comments = append(m.Comments, strings.TrimPrefix(line[1:], " "))
	}
}

func appendContinuation(m *Message, field, val string) {
	switch {
	case field == "msgctxt":
		m.MsgCtxt += val
	case field == "msgid":
		m.MsgID += val
	case field == "msgid_plural":
		m.MsgIDPlural += val
	case field == "msgstr":
		m.MsgStr += val
	case strings.HasPrefix(field, "msgstr["):
		var idx int
		fmt.Sscanf(field, "msgstr[%d]", &idx)
		m.MsgStrPlural[idx] += val
	}
}

// ParseFile reads a PO file from disk.
func ParseFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	f, err := Parse(fh)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, nil
}

// Write serializes the file. Long strings are never folded.
func (f *File) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	first := true
	if f.Header != nil {
		writeMessage(bw, f.Header)
		first = false
	}
	for _, m := range f.Messages {
		if !first {
			bw.WriteString("\n")
		}
		writeMessage(bw, m)
		first = false
	}
	if f.Trailing != nil {
		if !first {
			bw.WriteString("\n")
		}
		writeComments(bw, f.Trailing)
	}
	return bw.Flush()
}

// WriteFile writes the file to disk, replacing any previous content.
func (f *File) WriteFile(path string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := f.Write(out); err != nil {
		out.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return out.Close()
}

func writeMessage(w *bufio.Writer, m *Message) {
	prefix := ""
	if m.Obsolete {
		prefix = "#~ "
	}
	writeComments(w, m)
	if m.MsgCtxt != "" {
		writeField(w, prefix+"msgctxt", m.MsgCtxt)
	}
	writeField(w, prefix+"msgid", m.MsgID)
	if m.MsgIDPlural != "" {
		writeField(w, prefix+"msgid_plural", m.MsgIDPlural)
		indices := make([]int, 0, len(m.MsgStrPlural))
		for idx := range m.MsgStrPlural {
			indices = append(indices, idx)
		}
		sort.Ints(indices)
		for _, idx := range indices {
			writeField(w, fmt.Sprintf("%smsgstr[%d]", prefix, idx), m.MsgStrPlural[idx])
		}
		return
	}
	writeField(w, prefix+"msgstr", m.MsgStr)
}

func writeComments(w *bufio.Writer, m *Message) {
	for _, c := range m.Comments {
		if c == "" {
			w.WriteString("#\n")
			continue
		}
		fmt.Fprintf(w, "# %s\n", c)
	}
	for _, c := range m.Extracted {
		fmt.Fprintf(w, "#. %s\n", c)
	}
	for _, ref := range m.References {
		fmt.Fprintf(w, "#: %s\n", ref)
	}
	if len(m.Flags) > 0 {
		fmt.Fprintf(w, "#, %s\n", strings.Join(m.Flags, ", "))
	}
	if m.PreviousMsgID != "" {
		fmt.Fprintf(w, "#| msgid %s\n", quote(m.PreviousMsgID))
	}
}

// writeField writes a keyword and its value, splitting at embedded newlines.
func writeField(w *bufio.Writer, keyword, value string) {
	if !strings.Contains(value, "\n") || value == "\n" {
		fmt.Fprintf(w, "%s %s\n", keyword, quote(value))
		return
	}
	fmt.Fprintf(w, "%s \"\"\n", keyword)
	parts := strings.SplitAfter(value, "\n")
	for _, part := range parts {
		if part != "" {
			fmt.Fprintf(w, "%s\n", quote(part))
		}
	}
}

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`, "\r", `\r`)
	return `"` + r.Replace(s) + `"`
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	s = s[1 : len(s)-1]

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\', '"':
			b.WriteByte(s[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
