// Package i18n holds the interface-language dictionaries and the active
// interface language.
package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/jeandeaual/go-locale"
	"golang.org/x/text/language"

	"github.com/lehigh-university-libraries/imagetranslator/internal/prefs"
)

// StorageKey is the preference key the interface language is persisted under.
const StorageKey = "language-storage"

const (
	English = "en"
	Chinese = "zh"

	DefaultLanguage = English
)

var ErrUnsupportedLanguage = errors.New("unsupported interface language")

//go:embed locales/*.toml
var localeFS embed.FS

// LocaleFunc reports the environment locale, e.g. "zh-CN".
type LocaleFunc func() (string, error)

// persisted mirrors the document written under StorageKey.
type persisted struct {
	State struct {
		Language string `json:"language"`
	} `json:"state"`
	Version int `json:"version"`
}

// Store is the localization store. Construct it with NewStore and pass it
// to whoever renders messages.
type Store struct {
	mu       sync.RWMutex
	language string
	dicts    map[string]map[string]string
	storage  prefs.Storage
}

// NewStore loads the embedded dictionaries and picks the initial language:
// the persisted preference, then the environment locale, then English.
// A nil localeFunc uses the operating system locale.
func NewStore(ctx context.Context, storage prefs.Storage, localeFunc LocaleFunc) (*Store, error) {
	if storage == nil {
		storage = prefs.NewMemory()
	}
	if localeFunc == nil {
		localeFunc = locale.GetLocale
	}

	dicts, err := loadDictionaries()
	if err != nil {
		return nil, err
	}

	s := &Store{
		dicts:   dicts,
		storage: storage,
	}
	s.language = s.initialLanguage(ctx, localeFunc)
	slog.Debug("Interface language selected", "language", s.language)
	return s, nil
}

func (s *Store) initialLanguage(ctx context.Context, localeFunc LocaleFunc) string {
	raw, err := s.storage.GetItem(ctx, StorageKey)
	switch {
	case err == nil:
		var p persisted
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			slog.Error("Error getting saved language", "err", err)
			return DefaultLanguage
		}
		if s.supported(p.State.Language) {
			return p.State.Language
		}
	case !errors.Is(err, prefs.ErrNotFound):
		slog.Error("Error getting saved language", "err", err)
		return DefaultLanguage
	}

	loc, err := localeFunc()
	if err != nil {
		slog.Warn("Could not read environment locale", "err", err)
		return DefaultLanguage
	}
	if strings.HasPrefix(strings.ToLower(loc), Chinese) {
		return Chinese
	}
	return DefaultLanguage
}

func loadDictionaries() (map[string]map[string]string, error) {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("failed to read locales: %w", err)
	}

	dicts := make(map[string]map[string]string, len(entries))
	for _, e := range entries {
		name := e.Name()
		if path.Ext(name) != ".toml" {
			continue
		}
		data, err := localeFS.ReadFile(path.Join("locales", name))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		var tree map[string]any
		if _, err := toml.Decode(string(data), &tree); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		flat := make(map[string]string)
		flatten("", tree, flat)
		dicts[strings.TrimSuffix(name, ".toml")] = flat
	}
	return dicts, nil
}

// flatten turns nested tables into dotted keys.
func flatten(prefix string, tree map[string]any, out map[string]string) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case string:
			out[key] = val
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// T returns the message for key in the active language. A missing key
// returns the key itself.
func (s *Store) T(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookup(s.language, key)
}

// TIn returns the message for key in lang, with the same fallback as T.
func (s *Store) TIn(lang, key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookup(lang, key)
}

func (s *Store) lookup(lang, key string) string {
	if v, ok := s.dicts[lang][key]; ok && v != "" {
		return v
	}
	return key
}

func (s *Store) Language() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.language
}

// SetLanguage switches the active language and persists it. lang may be
// any tag whose base language is supported, so "zh-Hans" selects "zh".
func (s *Store) SetLanguage(ctx context.Context, lang string) error {
	code, err := s.normalize(lang)
	if err != nil {
		return err
	}

	var p persisted
	p.State.Language = code
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode language preference: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.SetItem(ctx, StorageKey, string(data)); err != nil {
		return fmt.Errorf("failed to save language preference: %w", err)
	}
	s.language = code
	slog.Info("Interface language changed", "language", code)
	return nil
}

// Languages lists the supported interface languages.
func (s *Store) Languages() []string {
	out := make([]string, 0, len(s.dicts))
	for lang := range s.dicts {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// Messages returns a copy of the flattened dictionary of the active language.
func (s *Store) Messages() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dict := s.dicts[s.language]
	out := make(map[string]string, len(dict))
	for k, v := range dict {
		out[k] = v
	}
	return out
}

func (s *Store) supported(lang string) bool {
	_, ok := s.dicts[lang]
	return ok
}

func (s *Store) normalize(lang string) (string, error) {
	lang = strings.TrimSpace(lang)
	if s.supported(lang) {
		return lang, nil
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	base, _ := tag.Base()
	if !s.supported(base.String()) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	return base.String(), nil
}
