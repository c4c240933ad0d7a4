package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/pricofy/document-translator/internal/extractor"
	"github.com/pricofy/document-translator/internal/translator"
)

// memStore is an in-memory object store keyed by bucket/key.
type memStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	metadata map[string]map[string]string
	types    map[string]string
	puts     int
	putErr   error
	headErr  error
}

func newMemStore() *memStore {
	return &memStore{
		objects:  map[string][]byte{},
		metadata: map[string]map[string]string{},
		types:    map[string]string{},
	}
}

func (m *memStore) add(bucket, key, body string, meta map[string]string) {
	m.objects[bucket+"/"+key] = []byte(body)
	m.metadata[bucket+"/"+key] = meta
}

func (m *memStore) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return body, nil
}

func (m *memStore) HeadMetadata(ctx context.Context, bucket, key string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.headErr != nil {
		return nil, m.headErr
	}
	return m.metadata[bucket+"/"+key], nil
}

func (m *memStore) PutObject(ctx context.Context, bucket, key string, body []byte, contentType string, metadata map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.puts++
	m.objects[bucket+"/"+key] = body
	m.metadata[bucket+"/"+key] = metadata
	m.types[bucket+"/"+key] = contentType
	return nil
}

type countingProvider struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (p *countingProvider) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, text)
	if p.err != nil {
		return "", p.err
	}
	return strings.ToUpper(text) + "@" + sourceLang + ">" + targetLang, nil
}

type fakeDetector struct {
	blocks []extractor.Block
}

func (f *fakeDetector) DetectText(ctx context.Context, bucket, key string) ([]extractor.Block, error) {
	return f.blocks, nil
}

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newOrchestrator(store *memStore, provider translator.Provider, detector extractor.TextDetector) *Orchestrator {
	return New(Config{
		Metadata:     store,
		Extractor:    extractor.New(store, detector),
		Translator:   translator.New(provider),
		Writer:       store,
		OutputBucket: "output",
		Logger:       quietLogger(),
	})
}

func TestOutputKey(t *testing.T) {
	tests := []struct {
		key      string
		code     string
		expected string
	}{
		{"report.pdf", "fr", "translated/report_fr.txt"},
		{"notes.txt", "es", "translated/notes_es.txt"},
		{"20250101_120000_ab12cd34_scan.JPG", "ar", "translated/20250101_120000_ab12cd34_scan_ar.txt"},
		{"nested/dir/file.tar.gz", "ru", "translated/file.tar_ru.txt"},
		{"noext", "bn", "translated/noext_bn.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := OutputKey(tt.key, tt.code); got != tt.expected {
				t.Errorf("OutputKey(%q, %q) = %q, want %q", tt.key, tt.code, got, tt.expected)
			}
		})
	}
}

func TestProcess_EndToEnd(t *testing.T) {
	store := newMemStore()
	store.add("input", "notes.txt", "Hello world", map[string]string{"target-language": "french"})
	provider := &countingProvider{}

	result := newOrchestrator(store, provider, &fakeDetector{}).Process(context.Background(), "input", "notes.txt")

	if !result.OK() {
		t.Fatalf("Process() failed: %+v", result)
	}
	if result.OutputKey != "translated/notes_fr.txt" {
		t.Errorf("OutputKey = %q", result.OutputKey)
	}
	if result.TargetLanguage != "fr" {
		t.Errorf("TargetLanguage = %q, want fr", result.TargetLanguage)
	}
	if len(provider.calls) != 1 || provider.calls[0] != "Hello world" {
		t.Errorf("provider calls = %q", provider.calls)
	}

	body := string(store.objects["output/translated/notes_fr.txt"])
	if body != "HELLO WORLD@en>fr" {
		t.Errorf("artifact body = %q", body)
	}
	meta := store.metadata["output/translated/notes_fr.txt"]
	want := map[string]string{"original-file": "notes.txt", "target-language": "fr", "source-language": "en"}
	for k, v := range want {
		if meta[k] != v {
			t.Errorf("artifact metadata[%q] = %q, want %q", k, meta[k], v)
		}
	}
	if len(meta) != len(want) {
		t.Errorf("artifact metadata = %v, want %v", meta, want)
	}
	if store.types["output/translated/notes_fr.txt"] != "text/plain" {
		t.Errorf("content type = %q", store.types["output/translated/notes_fr.txt"])
	}
	if store.puts != 1 {
		t.Errorf("store writes = %d, want 1", store.puts)
	}
}

func TestProcess_DefaultLanguage(t *testing.T) {
	tests := []struct {
		name string
		meta map[string]string
	}{
		{"nil metadata", nil},
		{"missing key", map[string]string{"original-filename": "a.txt"}},
		{"empty value", map[string]string{"target-language": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			store.add("input", "a.txt", "text", tt.meta)

			result := newOrchestrator(store, &countingProvider{}, &fakeDetector{}).Process(context.Background(), "input", "a.txt")
			if !result.OK() {
				t.Fatalf("Process() failed: %+v", result)
			}
			if result.OutputKey != "translated/a_es.txt" {
				t.Errorf("OutputKey = %q, want translated/a_es.txt", result.OutputKey)
			}
		})
	}
}

func TestProcess_PassThroughLanguage(t *testing.T) {
	store := newMemStore()
	store.add("input", "a.txt", "text", map[string]string{"target-language": "de"})
	provider := &countingProvider{}

	result := newOrchestrator(store, provider, &fakeDetector{}).Process(context.Background(), "input", "a.txt")
	if !result.OK() {
		t.Fatalf("Process() failed: %+v", result)
	}
	if result.OutputKey != "translated/a_de.txt" {
		t.Errorf("OutputKey = %q", result.OutputKey)
	}
}

func TestProcess_WarnsOnUnrecognisedLanguage(t *testing.T) {
	tests := []struct {
		lang     string
		wantWarn bool
	}{
		{"French", false},
		{"ar", false},
		{"de", true},
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			var buf bytes.Buffer
			l := logrus.New()
			l.SetOutput(&buf)

			store := newMemStore()
			store.add("input", "a.txt", "Hello", map[string]string{"target-language": tt.lang})
			o := New(Config{
				Metadata:     store,
				Extractor:    extractor.New(store, &fakeDetector{}),
				Translator:   translator.New(&countingProvider{}),
				Writer:       store,
				OutputBucket: "output",
				Logger:       logrus.NewEntry(l),
			})

			if result := o.Process(context.Background(), "input", "a.txt"); !result.OK() {
				t.Fatalf("Process() = %+v", result)
			}
			if got := strings.Contains(buf.String(), "unrecognised target language"); got != tt.wantWarn {
				t.Errorf("warned = %v, want %v\n%s", got, tt.wantWarn, buf.String())
			}
		})
	}
}

func TestProcess_UnsupportedFormat(t *testing.T) {
	store := newMemStore()
	store.add("input", "archive.zip", "PK...", map[string]string{"target-language": "es"})
	provider := &countingProvider{}

	result := newOrchestrator(store, provider, &fakeDetector{}).Process(context.Background(), "input", "archive.zip")

	if result.Status != StateFailed || result.Stage != StageExtract {
		t.Fatalf("Process() = %+v, want failed at extract", result)
	}
	var unsupported *extractor.UnsupportedFormatError
	if !errors.As(result.Err(), &unsupported) || unsupported.Ext != "zip" {
		t.Errorf("Err() = %v, want UnsupportedFormatError(zip)", result.Err())
	}
	if store.puts != 0 {
		t.Error("no artifact should be written")
	}
	if len(provider.calls) != 0 {
		t.Error("translation should not run")
	}
}

func TestProcess_ImageLines(t *testing.T) {
	store := newMemStore()
	store.add("input", "scan.png", "", map[string]string{"target-language": "Arabic"})
	detector := &fakeDetector{blocks: []extractor.Block{
		{Type: "LINE", Text: "one"},
		{Type: "WORD", Text: "one"},
		{Type: "LINE", Text: "two"},
	}}
	provider := &countingProvider{}

	result := newOrchestrator(store, provider, detector).Process(context.Background(), "input", "scan.png")
	if !result.OK() {
		t.Fatalf("Process() failed: %+v", result)
	}
	if provider.calls[0] != "one\ntwo\n" {
		t.Errorf("translated text = %q", provider.calls[0])
	}
	if result.OutputKey != "translated/scan_ar.txt" {
		t.Errorf("OutputKey = %q", result.OutputKey)
	}
}

func TestProcess_OversizedInputIsBoundedToOneCall(t *testing.T) {
	store := newMemStore()
	store.add("input", "big.txt", strings.Repeat("a", 10000)+strings.Repeat("b", 10000), nil)
	provider := &countingProvider{}

	result := newOrchestrator(store, provider, &fakeDetector{}).Process(context.Background(), "input", "big.txt")
	if !result.OK() {
		t.Fatalf("Process() failed: %+v", result)
	}

	// 20000 characters bound to 2500 + len("\n...\n") + 2500 = 5005, one 9000 chunk
	if len(provider.calls) != 1 {
		t.Fatalf("provider called %d times, want 1", len(provider.calls))
	}
	sent := provider.calls[0]
	if len(sent) != 5005 {
		t.Errorf("translated text length = %d, want 5005", len(sent))
	}
	if sent != strings.Repeat("a", 2500)+"\n...\n"+strings.Repeat("b", 2500) {
		t.Error("bounded text is not the head and tail excerpt")
	}
}

func TestProcess_TranslationFailure(t *testing.T) {
	store := newMemStore()
	store.add("input", "notes.txt", "Hello", map[string]string{"target-language": "xx"})
	provider := &countingProvider{err: errors.New("UnsupportedLanguagePairException")}

	result := newOrchestrator(store, provider, &fakeDetector{}).Process(context.Background(), "input", "notes.txt")

	if result.Status != StateFailed || result.Stage != StageTranslate {
		t.Fatalf("Process() = %+v, want failed at translate", result)
	}
	var chunkErr *translator.ChunkError
	if !errors.As(result.Err(), &chunkErr) || chunkErr.Index != 0 {
		t.Errorf("Err() = %v, want ChunkError at index 0", result.Err())
	}
	if store.puts != 0 {
		t.Error("no artifact should be written")
	}
}

func TestProcess_PersistFailure(t *testing.T) {
	store := newMemStore()
	store.add("input", "notes.txt", "Hello", nil)
	store.putErr = errors.New("AccessDenied")

	result := newOrchestrator(store, &countingProvider{}, &fakeDetector{}).Process(context.Background(), "input", "notes.txt")

	if result.Status != StateFailed || result.Stage != StagePersist {
		t.Fatalf("Process() = %+v, want failed at persist", result)
	}
	if !errors.Is(result.Err(), ErrPersistFailed) {
		t.Errorf("Err() = %v, want ErrPersistFailed", result.Err())
	}
	if !strings.Contains(result.Message, "AccessDenied") {
		t.Errorf("Message = %q", result.Message)
	}
}

func TestProcess_MetadataFailure(t *testing.T) {
	store := newMemStore()
	store.headErr = errors.New("NotFound")

	result := newOrchestrator(store, &countingProvider{}, &fakeDetector{}).Process(context.Background(), "input", "gone.txt")
	if result.Status != StateFailed || result.Stage != StageExtract {
		t.Fatalf("Process() = %+v, want failed at extract", result)
	}
}

func TestProcess_RerunOverwrites(t *testing.T) {
	store := newMemStore()
	store.add("input", "notes.txt", "first", map[string]string{"target-language": "es"})
	o := newOrchestrator(store, &countingProvider{}, &fakeDetector{})

	first := o.Process(context.Background(), "input", "notes.txt")
	store.add("input", "notes.txt", "second", map[string]string{"target-language": "spanish"})
	second := o.Process(context.Background(), "input", "notes.txt")

	if !first.OK() || !second.OK() {
		t.Fatalf("Process() failed: %+v / %+v", first, second)
	}
	if first.OutputKey != second.OutputKey {
		t.Errorf("rerun wrote %q, first run wrote %q", second.OutputKey, first.OutputKey)
	}
	if got := string(store.objects["output/translated/notes_es.txt"]); got != "SECOND@en>es" {
		t.Errorf("artifact after rerun = %q", got)
	}
}

type panickingTranslator struct{}

func (panickingTranslator) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	panic("boom")
}

func TestProcess_RecoversPanic(t *testing.T) {
	store := newMemStore()
	store.add("input", "notes.txt", "Hello", nil)
	o := New(Config{
		Metadata:     store,
		Extractor:    extractor.New(store, &fakeDetector{}),
		Translator:   panickingTranslator{},
		Writer:       store,
		OutputBucket: "output",
		Logger:       quietLogger(),
	})

	result := o.Process(context.Background(), "input", "notes.txt")
	if result.Status != StateFailed || result.Stage != StageTranslate {
		t.Errorf("Process() = %+v, want failed at translate", result)
	}
}

func TestProcess_RecoversProviderPanic(t *testing.T) {
	store := newMemStore()
	store.add("input", "notes.txt", "Hello", map[string]string{"target-language": "french"})
	provider := translator.ProviderFunc(func(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
		panic("provider exploded")
	})

	result := newOrchestrator(store, provider, &fakeDetector{}).Process(context.Background(), "input", "notes.txt")

	if result.Status != StateFailed || result.Stage != StageTranslate {
		t.Fatalf("Process() = %+v, want failed at translate", result)
	}
	if !errors.Is(result.Err(), translator.ErrTranslationFailed) {
		t.Errorf("Err() = %v, want ErrTranslationFailed", result.Err())
	}
	if store.puts != 0 {
		t.Error("no artifact should be written")
	}
}

func TestProcess_ConcurrentInvocations(t *testing.T) {
	store := newMemStore()
	keys := []string{"a.txt", "b.txt", "c.txt", "d.txt"}
	for _, k := range keys {
		store.add("input", k, "text of "+k, map[string]string{"target-language": "russian"})
	}
	o := newOrchestrator(store, &countingProvider{}, &fakeDetector{})

	var wg sync.WaitGroup
	results := make([]Result, len(keys))
	for i, k := range keys {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = o.Process(context.Background(), "input", k)
		}()
	}
	wg.Wait()

	for i, r := range results {
		if !r.OK() {
			t.Errorf("invocation %s failed: %+v", keys[i], r)
		}
	}
	if store.puts != len(keys) {
		t.Errorf("store writes = %d, want %d", store.puts, len(keys))
	}
}
