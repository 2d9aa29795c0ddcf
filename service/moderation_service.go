package service

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"threadsnet/model"
	"threadsnet/repository"
)

// ModerationService 敏感词管理与文本过滤
type ModerationService struct {
	repo     repository.SensitiveWordRepository
	settings *SystemSettingsService

	mu      sync.RWMutex
	pattern *regexp.Regexp
	loaded  bool
}

func NewModerationService(repo repository.SensitiveWordRepository, settings *SystemSettingsService) *ModerationService {
	return &ModerationService{repo: repo, settings: settings}
}

// ListWords 全部敏感词，按添加顺序
func (s *ModerationService) ListWords(ctx context.Context) ([]string, error) {
	rows, err := s.repo.ListSensitiveWords(ctx)
	if err != nil {
		return nil, WrapError(KindInternal, "failed to load sensitive words", err)
	}
	words := make([]string, len(rows))
	for i := range rows {
		words[i] = rows[i].Word
	}
	return words, nil
}

// AddWords 添加敏感词（去空白、转小写、去重），返回添加后的完整列表
func (s *ModerationService) AddWords(ctx context.Context, words []string) ([]string, error) {
	normalized := normalizeWords(words)
	if len(normalized) == 0 {
		return nil, NewError(KindValidation, "words must be a non-empty array")
	}

	added, err := s.repo.AddSensitiveWords(ctx, normalized)
	if err != nil {
		return nil, WrapError(KindInternal, "failed to add sensitive words", err)
	}
	zap.L().Info("sensitive words added", zap.Int("requested", len(normalized)), zap.Int("added", added))
	return s.reload(ctx)
}

// DeleteWord 删除敏感词，返回剩余列表
func (s *ModerationService) DeleteWord(ctx context.Context, word string) ([]string, error) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return nil, NewError(KindValidation, "word is required")
	}
	deleted, err := s.repo.DeleteSensitiveWord(ctx, word)
	if err != nil {
		return nil, WrapError(KindInternal, "failed to delete sensitive word", err)
	}
	if !deleted {
		return nil, NewError(KindNotFound, "Word not found")
	}
	return s.reload(ctx)
}

// Filter 开关开启时把整词命中（不区分大小写）替换为等长的 *
func (s *ModerationService) Filter(ctx context.Context, text string) string {
	if text == "" || !s.settings.IsFeatureEnabled(model.SettingSensitiveWordFilter) {
		return text
	}

	pattern, err := s.currentPattern(ctx)
	if err != nil {
		zap.L().Warn("sensitive word filter unavailable", zap.Error(err))
		return text
	}
	if pattern == nil {
		return text
	}
	return maskWholeWords(pattern, text)
}

func (s *ModerationService) currentPattern(ctx context.Context) (*regexp.Regexp, error) {
	s.mu.RLock()
	pattern, loaded := s.pattern, s.loaded
	s.mu.RUnlock()
	if loaded {
		return pattern, nil
	}
	if _, err := s.reload(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pattern, nil
}

func (s *ModerationService) reload(ctx context.Context) ([]string, error) {
	words, err := s.ListWords(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.pattern = compileWords(words)
	s.loaded = true
	s.mu.Unlock()
	return words, nil
}

func normalizeWords(words []string) []string {
	seen := make(map[string]bool, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

// compileWords 长词优先，保证 "bad word" 先于 "bad" 匹配
func compileWords(words []string) *regexp.Regexp {
	if len(words) == 0 {
		return nil
	}
	sorted := append([]string(nil), words...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	quoted := make([]string, len(sorted))
	for i, w := range sorted {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)`)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func maskWholeWords(pattern *regexp.Regexp, text string) string {
	var b strings.Builder
	last := 0
	for _, loc := range pattern.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		if start > 0 {
			if r, _ := utf8.DecodeLastRuneInString(text[:start]); isWordRune(r) {
				continue
			}
		}
		if end < len(text) {
			if r, _ := utf8.DecodeRuneInString(text[end:]); isWordRune(r) {
				continue
			}
		}
		b.WriteString(text[last:start])
		b.WriteString(strings.Repeat("*", utf8.RuneCountInString(text[start:end])))
		last = end
	}
	if last == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}
