package recommender

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Jayesh25-trade/CineVibe/internal/domain/movie"
	"github.com/Jayesh25-trade/CineVibe/internal/infra/llm/chatgpt"
	apperrors "github.com/Jayesh25-trade/CineVibe/pkg/errors"
	"github.com/Jayesh25-trade/CineVibe/pkg/logger"
)

type stubChatClient struct {
	content string
	err     error
	calls   atomic.Int32
	lastReq chatgpt.ChatCompletionRequest
}

func (s *stubChatClient) CreateChatCompletion(_ context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error) {
	s.calls.Add(1)
	s.lastReq = req
	if s.err != nil {
		return chatgpt.ChatCompletionResponse{}, s.err
	}
	return chatgpt.ChatCompletionResponse{
		Choices: []chatgpt.Choice{{Message: chatgpt.Message{Role: "assistant", Content: s.content}}},
	}, nil
}

type stubFinder struct {
	findFn func(title string) (movie.Record, error)
	calls  atomic.Int32
}

func (s *stubFinder) FindMovie(_ context.Context, title string, opts movie.DetailOptions) (movie.Record, error) {
	s.calls.Add(1)
	if !opts.IncludeVideos {
		return movie.Record{}, errors.New("recommendations must request trailers")
	}
	return s.findFn(title)
}

type stubTrending struct {
	records []movie.Record
	calls   atomic.Int32
}

func (s *stubTrending) Trending(context.Context) []movie.Record {
	s.calls.Add(1)
	return s.records
}

func titles(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("%d. Title %d", i+1, i+1)
	}
	return strings.Join(lines, "\n")
}

func idFromTitle(title string) string {
	return "tmdb-" + strings.TrimPrefix(title, "Title ")
}

func newServiceUnderTest(chat ChatClient, finder MovieFinder, trending TrendingSource) *service {
	return NewService(DefaultConfig(), chat, finder, trending, logger.Discard()).(*service)
}

func TestRecommendRejectsBlankMoodBeforeAnyCall(t *testing.T) {
	chat := &stubChatClient{content: titles(15)}
	finder := &stubFinder{findFn: func(string) (movie.Record, error) { return movie.Record{}, nil }}
	svc := newServiceUnderTest(chat, finder, &stubTrending{})

	for _, mood := range []string{"", "   ", "\n\t"} {
		_, err := svc.Recommend(context.Background(), Request{Mood: mood})
		require.Error(t, err)
		require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
		require.Equal(t, "Mood is required and must be non-empty", apperrors.MessageOf(err, ""))
	}
	require.Zero(t, chat.calls.Load())
	require.Zero(t, finder.calls.Load())
}

func TestRecommendRejectsLongMood(t *testing.T) {
	chat := &stubChatClient{content: titles(15)}
	finder := &stubFinder{findFn: func(string) (movie.Record, error) { return movie.Record{}, movie.ErrNotFound }}
	svc := newServiceUnderTest(chat, finder, &stubTrending{})

	_, err := svc.Recommend(context.Background(), Request{Mood: strings.Repeat("a", 501)})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	require.Equal(t, "Mood too long (max 500 chars)", apperrors.MessageOf(err, ""))
	require.Zero(t, chat.calls.Load())
	require.Zero(t, finder.calls.Load())

	// runes, not bytes
	_, err = svc.Recommend(context.Background(), Request{Mood: strings.Repeat("é", 500)})
	require.NoError(t, err)
	require.EqualValues(t, 1, chat.calls.Load())
}

func TestRecommendLooksUpEveryTitleAtOnce(t *testing.T) {
	const n = 15
	var active, peak atomic.Int32
	allIn := make(chan struct{})
	var once sync.Once
	finder := &stubFinder{findFn: func(title string) (movie.Record, error) {
		cur := active.Add(1)
		defer active.Add(-1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		if cur == n {
			once.Do(func() { close(allIn) })
		}
		select {
		case <-allIn:
		case <-time.After(2 * time.Second):
		}
		return movie.Record{ID: idFromTitle(title), Title: title, Rating: 7}, nil
	}}
	svc := newServiceUnderTest(&stubChatClient{content: titles(n)}, finder, &stubTrending{})

	resp, err := svc.Recommend(context.Background(), Request{Mood: "late night noir"})
	require.NoError(t, err)
	require.Equal(t, n, resp.Count)
	require.EqualValues(t, n, peak.Load())
}

func TestRecommendBoundsLookupsWhenConfigured(t *testing.T) {
	var active, peak atomic.Int32
	finder := &stubFinder{findFn: func(title string) (movie.Record, error) {
		cur := active.Add(1)
		defer active.Add(-1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		return movie.Record{ID: idFromTitle(title), Title: title, Rating: 7}, nil
	}}
	cfg := DefaultConfig()
	cfg.Concurrency = 3
	svc := NewService(cfg, &stubChatClient{content: titles(12)}, finder, &stubTrending{}, logger.Discard())

	resp, err := svc.Recommend(context.Background(), Request{Mood: "heist"})
	require.NoError(t, err)
	require.Equal(t, 12, resp.Count)
	require.LessOrEqual(t, peak.Load(), int32(3))
}

func TestRecommendDropsDuplicateMatches(t *testing.T) {
	chat := &stubChatClient{content: "Dune\nDune: Part One\nArrival"}
	finder := &stubFinder{findFn: func(title string) (movie.Record, error) {
		if strings.HasPrefix(title, "Dune") {
			return movie.Record{ID: "438631", Title: "Dune", Rating: 7.8}, nil
		}
		return movie.Record{ID: "329865", Title: title, Rating: 7.6}, nil
	}}
	cfg := DefaultConfig()
	cfg.Floor = 1
	svc := NewService(cfg, chat, finder, &stubTrending{}, logger.Discard())

	resp, err := svc.Recommend(context.Background(), Request{Mood: "cerebral sci-fi"})
	require.NoError(t, err)
	require.Equal(t, 2, resp.Count)
	require.Equal(t, "438631", resp.Movies[0].ID)
	require.Equal(t, "329865", resp.Movies[1].ID)
}

func TestRecommendHappyPath(t *testing.T) {
	chat := &stubChatClient{content: titles(15)}
	finder := &stubFinder{findFn: func(title string) (movie.Record, error) {
		return movie.Record{ID: idFromTitle(title), Title: title, Rating: 7.0}, nil
	}}
	trending := &stubTrending{}
	svc := newServiceUnderTest(chat, finder, trending)

	resp, err := svc.Recommend(context.Background(), Request{Mood: "  cozy rainy day "})
	require.NoError(t, err)
	require.Equal(t, "cozy rainy day", resp.Mood)
	require.Len(t, resp.Movies, 15)
	require.Equal(t, len(resp.Movies), resp.Count)
	for i, m := range resp.Movies {
		require.Greater(t, m.Rating, 5.0)
		require.Equal(t, fmt.Sprintf("Title %d", i+1), m.Title)
	}
	require.Zero(t, trending.calls.Load())

	require.Equal(t, "gpt-4o-mini", chat.lastReq.Model)
	require.InDelta(t, 0.8, chat.lastReq.Temperature, 1e-6)
	require.Equal(t, 600, chat.lastReq.MaxTokens)
	require.Len(t, chat.lastReq.Messages, 2)
	require.Equal(t, DefaultSystemPrompt, chat.lastReq.Messages[0].Content)
	require.Equal(t, `Find 15 movies that match this vibe: "cozy rainy day"`, chat.lastReq.Messages[1].Content)
}

func TestRecommendSupplementsFromTrending(t *testing.T) {
	chat := &stubChatClient{content: titles(15)}
	finder := &stubFinder{findFn: func(title string) (movie.Record, error) {
		id := idFromTitle(title)
		switch title {
		case "Title 1", "Title 2", "Title 3":
			return movie.Record{ID: id, Title: title, Rating: 8}, nil
		case "Title 4":
			return movie.Record{}, movie.ErrNotFound
		case "Title 5":
			return movie.Record{}, errors.New("upstream timeout")
		default:
			return movie.Record{ID: id, Title: title, Rating: 5.0}, nil
		}
	}}
	cached := make([]movie.Record, 0, 20)
	// overlaps with an enriched id
	cached = append(cached, movie.Record{ID: "tmdb-2", Title: "Title 2", Rating: 9})
	for i := 0; i < 19; i++ {
		cached = append(cached, movie.Record{ID: fmt.Sprintf("trend-%d", i), Rating: 7})
	}
	trending := &stubTrending{records: cached}
	svc := newServiceUnderTest(chat, finder, trending)

	resp, err := svc.Recommend(context.Background(), Request{Mood: "melancholy"})
	require.NoError(t, err)
	require.Len(t, resp.Movies, 15)
	require.Equal(t, 15, resp.Count)
	require.Equal(t, []string{"tmdb-1", "tmdb-2", "tmdb-3"}, []string{resp.Movies[0].ID, resp.Movies[1].ID, resp.Movies[2].ID})
	require.Equal(t, "trend-0", resp.Movies[3].ID)

	seen := map[string]bool{}
	for _, m := range resp.Movies {
		require.False(t, seen[m.ID], "duplicate id %s", m.ID)
		seen[m.ID] = true
	}
	require.EqualValues(t, 1, trending.calls.Load())
}

func TestRecommendSkipsSupplementAtFloor(t *testing.T) {
	chat := &stubChatClient{content: titles(8)}
	finder := &stubFinder{findFn: func(title string) (movie.Record, error) {
		return movie.Record{ID: idFromTitle(title), Rating: 6}, nil
	}}
	trending := &stubTrending{records: []movie.Record{{ID: "x", Rating: 9}}}
	svc := newServiceUnderTest(chat, finder, trending)

	resp, err := svc.Recommend(context.Background(), Request{Mood: "heist"})
	require.NoError(t, err)
	require.Equal(t, 8, resp.Count)
	require.Zero(t, trending.calls.Load())
}

func TestRecommendLLMFailures(t *testing.T) {
	tests := []struct {
		name string
		chat *stubChatClient
	}{
		{name: "transport error", chat: &stubChatClient{err: errors.New("status 500")}},
		{name: "no titles", chat: &stubChatClient{content: "\n  \n"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finder := &stubFinder{findFn: func(string) (movie.Record, error) { return movie.Record{}, nil }}
			svc := newServiceUnderTest(tt.chat, finder, &stubTrending{})

			_, err := svc.Recommend(context.Background(), Request{Mood: "spooky"})
			require.True(t, apperrors.IsCode(err, apperrors.CodeLLM))
			require.Equal(t, "AI service temporarily unavailable", apperrors.MessageOf(err, ""))
			require.Zero(t, finder.calls.Load())
		})
	}
}

func TestRecommendMetadataOutage(t *testing.T) {
	chat := &stubChatClient{content: titles(5)}
	finder := &stubFinder{findFn: func(string) (movie.Record, error) {
		return movie.Record{}, errors.New("connection refused")
	}}
	svc := newServiceUnderTest(chat, finder, &stubTrending{})

	_, err := svc.Recommend(context.Background(), Request{Mood: "road trip"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeMetadata))
}

func TestRecommendNoMatchesIsNotAnOutage(t *testing.T) {
	chat := &stubChatClient{content: titles(5)}
	finder := &stubFinder{findFn: func(string) (movie.Record, error) {
		return movie.Record{}, movie.ErrNotFound
	}}
	svc := newServiceUnderTest(chat, finder, &stubTrending{})

	resp, err := svc.Recommend(context.Background(), Request{Mood: "obscure"})
	require.NoError(t, err)
	require.Zero(t, resp.Count)
	require.NotNil(t, resp.Movies)
}
