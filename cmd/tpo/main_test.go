package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/asynkron/tpo/internal/catalog"
	"github.com/asynkron/tpo/internal/config"
	"github.com/asynkron/tpo/internal/dupes"
	"github.com/asynkron/tpo/internal/translate"
)

const enPO = `msgid ""
msgstr ""
"Language: en\n"

#: src/app.ts:12
msgid "save"
msgstr "Save the file"

#: src/menu.ts:4
msgid "store"
msgstr "Save the file!"

#: src/app.ts:20
msgid "greet"
msgstr "Hello {name}"

#: src/help.ts:7
msgid "click"
msgstr "Please click the button below"

msgid "press"
msgstr "Please press the button below"
`

const frPO = `msgid ""
msgstr ""
"Language: fr\n"

msgid "save"
msgstr "Enregistrer le fichier"

msgid "store"
msgstr "Stocker"

msgid "greet"
msgstr ""

msgid "click"
msgstr "Cliquez sur le bouton"

msgid "press"
msgstr "Appuyez sur le bouton"
`

// project is a temporary tpo workspace with one catalog per language.
type project struct {
	dir    string
	config string
}

func newProject(t *testing.T, extra map[string]any) *project {
	t.Helper()
	t.Setenv("DEEPL_API_KEY", "")
	dir := t.TempDir()

	for lang, content := range map[string]string{"en": enPO, "fr": frPO} {
		path := filepath.Join(dir, "locales", lang, "messages.po")
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	cfg := map[string]any{
		"localesPath":  filepath.Join(dir, "locales", "{locale}", "messages.po"),
		"mainLanguage": "en",
		"log":          map[string]any{"format": "text"},
	}
	for k, v := range extra {
		cfg[k] = v
	}
	data, err := json.Marshal(cfg)
	require.NoError(t, err)

	p := &project{dir: dir, config: filepath.Join(dir, "tpo.config.json")}
	require.NoError(t, os.WriteFile(p.config, data, 0o644))
	return p
}

func (p *project) catalog(lang string) string {
	return filepath.Join(p.dir, "locales", lang, "messages.po")
}

// syncBuffer is a bytes.Buffer safe for a command running in another goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (p *project) runContext(ctx context.Context, stdout, stderr *syncBuffer, args ...string) error {
	root := newRootCmd()
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(append([]string{"--config", p.config}, args...))
	return root.ExecuteContext(ctx)
}

func (p *project) run(args ...string) (string, string, error) {
	var stdout, stderr syncBuffer
	err := p.runContext(context.Background(), &stdout, &stderr, args...)
	return stdout.String(), stderr.String(), err
}

func TestDuplicatesExact(t *testing.T) {
	p := newProject(t, nil)

	out, logs, err := p.run("duplicates")
	require.NoError(t, err)

	assert.Contains(t, out, "🌍 Language: en")
	assert.Contains(t, out, "❗ Found 1 duplicate group")
	assert.Contains(t, out, "1. Duplicate (2)")
	assert.Contains(t, out, "Save the file  "+p.catalog("en")+":12")
	assert.Contains(t, out, "Save the file!  "+p.catalog("en")+":4")
	assert.NotContains(t, out, "Please click")
	assert.Contains(t, out, "[fr] No duplicates found")
	assert.Contains(t, out, "Total: 1 duplicate group in 2 languages")
	assert.Contains(t, logs, "Scanning msgstr duplicates with strict full match")
}

func TestDuplicatesFuzzy(t *testing.T) {
	p := newProject(t, nil)

	out, logs, err := p.run("duplicates", "--words", "3", "--only", "en")
	require.NoError(t, err)
	assert.Contains(t, out, "❗ Found 2 duplicate groups")
	assert.Contains(t, out, "2. Duplicate (2)")
	assert.Contains(t, out, "Please press the button below  "+p.catalog("en"))
	assert.NotContains(t, out, "[fr]")
	assert.Contains(t, logs, "words=3, similarity=0")
}

func TestDuplicatesNoneFound(t *testing.T) {
	p := newProject(t, nil)

	out, _, err := p.run("duplicates", "--only", "fr", "--strict")
	require.NoError(t, err)
	assert.Contains(t, out, "[fr] No duplicates found")
	assert.Contains(t, out, "No duplicates found in any language")
}

func TestDuplicatesStrict(t *testing.T) {
	p := newProject(t, nil)

	_, _, err := p.run("duplicates", "--strict")
	assert.ErrorIs(t, err, errDuplicatesFound)

	p = newProject(t, map[string]any{"duplicates": map[string]any{"strict": true}})
	_, _, err = p.run("duplicates")
	assert.ErrorIs(t, err, errDuplicatesFound)
}

func TestDuplicatesInvalidOptions(t *testing.T) {
	p := newProject(t, nil)

	tests := []struct {
		args []string
		want error
		msg  string
	}{
		{[]string{"--similarity", "1"}, dupes.ErrGapWithoutMinRunLength, "--similarity can only be used together with --words"},
		{[]string{"--words", "0"}, dupes.ErrInvalidMinRunLength, "invalid value for --words"},
		{[]string{"--words", "2", "--similarity", "-1"}, dupes.ErrInvalidMaxGap, "invalid value for --similarity"},
		{[]string{"--only", "ja"}, catalog.ErrNoCatalogs, "ja"},
	}
	for _, tt := range tests {
		out, _, err := p.run(append([]string{"duplicates"}, tt.args...)...)
		require.ErrorIs(t, err, tt.want, "%v", tt.args)
		assert.Contains(t, err.Error(), tt.msg)
		assert.Empty(t, out, "no report before validation passes")
	}

	_, _, err := p.run("duplicates", "--format", "html")
	assert.ErrorContains(t, err, "invalid value for --format")
}

func TestDuplicatesJSON(t *testing.T) {
	p := newProject(t, nil)
	outFile := filepath.Join(p.dir, "reports", "dupes.json")

	out, _, err := p.run("duplicates", "--format", "json", "--out", outFile)
	require.NoError(t, err)

	var report Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "strict full match", report.Mode)
	assert.Equal(t, 1, report.TotalGroups)
	require.Len(t, report.Languages, 2)

	en := report.Languages[0]
	assert.Equal(t, "en", en.Language)
	assert.Equal(t, 5, en.Entries)
	require.Len(t, en.Groups, 1)
	assert.Equal(t, []string{"file", "save", "the"}, en.Groups[0].SharedWords)
	assert.Equal(t, []ReportMember{
		{MsgID: "save", Text: "Save the file", Location: p.catalog("en") + ":12"},
		{MsgID: "store", Text: "Save the file!", Location: p.catalog("en") + ":4"},
	}, en.Groups[0].Members)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var written Report
	require.NoError(t, json.Unmarshal(data, &written))
	assert.Equal(t, report, written)
}

func TestDuplicatesYAML(t *testing.T) {
	p := newProject(t, map[string]any{"duplicates": map[string]any{"format": "yaml", "words": 3}})

	out, _, err := p.run("duplicates")
	require.NoError(t, err)

	var report Report
	require.NoError(t, yaml.Unmarshal([]byte(out), &report))
	assert.Equal(t, "words=3, similarity=0", report.Mode)
	assert.Equal(t, 3, report.TotalGroups)
	require.Len(t, report.Languages, 2)
	assert.Len(t, report.Languages[0].Groups, 2)
	require.Len(t, report.Languages[1].Groups, 1)
	assert.Equal(t, []string{"bouton", "le", "sur"}, report.Languages[1].Groups[0].SharedWords)
	assert.Equal(t, 1, report.Languages[1].Skipped)
}

func TestDuplicatesMarkdown(t *testing.T) {
	p := newProject(t, nil)

	out, _, err := p.run("duplicates", "--format", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "Duplicate translations")
	assert.Contains(t, out, "1. Duplicate (2)")
	assert.Contains(t, out, "No duplicates found.")
}

func TestMarkdownReportHighlightsSharedWords(t *testing.T) {
	groups, stats, err := dupes.FindGroups("en.po", []catalog.Entry{
		{MsgID: "a", MsgStr: "Save the *file*"},
		{MsgID: "b", MsgStr: "save THE file"},
	}, dupes.Options{})
	require.NoError(t, err)

	md := markdownReport([]dupes.Result{{Language: "en", File: "en.po", Groups: groups, Stats: stats}}, dupes.Options{})
	assert.Contains(t, md, `- **Save** **the** **\*file\***  `+"`en.po`")
	assert.Contains(t, md, "- **save** **THE** **file**")
}

func TestDuplicatesWatch(t *testing.T) {
	p := newProject(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var stdout, stderr syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- p.runContext(ctx, &stdout, &stderr, "duplicates", "--only", "fr", "--watch")
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(stderr.String(), "Watching catalogs for changes")
	}, 5*time.Second, 20*time.Millisecond)
	assert.Contains(t, stdout.String(), "[fr] No duplicates found")

	updated := frPO + "\nmsgid \"keep\"\nmsgstr \"Stocker\"\n"
	require.NoError(t, os.WriteFile(p.catalog("fr"), []byte(updated), 0o644))

	require.Eventually(t, func() bool {
		return strings.Contains(stdout.String(), "🌍 Language: fr")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestTranslateDryRun(t *testing.T) {
	p := newProject(t, nil)

	out, logs, err := p.run("translate", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Translation Summary")
	assert.Contains(t, out, "fr")
	assert.Contains(t, logs, "Dry run complete")

	data, err := os.ReadFile(p.catalog("fr"))
	require.NoError(t, err)
	assert.Equal(t, frPO, string(data))
}

func TestTranslateMissingKey(t *testing.T) {
	p := newProject(t, nil)

	_, _, err := p.run("translate")
	assert.ErrorIs(t, err, translate.ErrMissingAPIKey)
}

func TestTranslateWithDeepL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text       []string `json:"text"`
			TargetLang string   `json:"target_lang"`
			Formality  string   `json:"formality"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "FR", req.TargetLang)
		assert.Equal(t, "less", req.Formality)

		var resp struct {
			Translations []map[string]string `json:"translations"`
		}
		for _, text := range req.Text {
			resp.Translations = append(resp.Translations, map[string]string{"text": "Bonjour " + strings.TrimPrefix(text, "Hello ")})
		}
		assert.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	p := newProject(t, map[string]any{"deepl": map[string]any{"api_key": "test:fx", "endpoint": srv.URL}})

	out, logs, err := p.run("translate", "--formality", "less", "--only", "fr")
	require.NoError(t, err)
	assert.Contains(t, out, "fr: 1 entry translated")
	assert.Contains(t, logs, "greet → Bonjour {name} ["+p.catalog("fr")+":11]")

	f, err := catalog.ParseFile(p.catalog("fr"))
	require.NoError(t, err)
	assert.Equal(t, "Bonjour {name}", f.Lookup("greet").MsgStr)
	assert.Equal(t, "Stocker", f.Lookup("store").MsgStr)

	out, logs, err = p.run("translate")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, logs, "All translations are up-to-date!")
}

func TestTranslateProviderFailureLeavesCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message":"Authorization failure"}`)
	}))
	defer srv.Close()

	p := newProject(t, map[string]any{"deepl": map[string]any{"api_key": "bad", "endpoint": srv.URL}})

	_, _, err := p.run("translate")
	require.ErrorContains(t, err, "Authorization failure")

	data, err := os.ReadFile(p.catalog("fr"))
	require.NoError(t, err)
	assert.Equal(t, frPO, string(data))
}

func TestConfigErrors(t *testing.T) {
	p := newProject(t, map[string]any{"mainLanguage": ""})
	_, _, err := p.run("duplicates")
	assert.ErrorIs(t, err, config.ErrMissingKey)

	p = newProject(t, map[string]any{"localesPath": filepath.Join(t.TempDir(), "messages.po")})
	_, _, err = p.run("duplicates")
	assert.ErrorIs(t, err, catalog.ErrMissingLocalePlaceholder)

	p = newProject(t, map[string]any{"mainLanguage": "de"})
	_, _, err = p.run("translate", "--dry-run")
	assert.ErrorContains(t, err, "main language file not found for de")
}

func TestVersion(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "tpo dev (none)\n", out.String())
}
