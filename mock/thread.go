package mock

import (
	"context"

	"github.com/fwojciec/bustop"
)

var (
	_ bustop.ThreadService = (*ThreadService)(nil)
	_ bustop.ThreadWriter  = (*ThreadWriter)(nil)
)

// ThreadService is a mock implementation of bustop.ThreadService.
type ThreadService struct {
	ReplaceThreadFn func(ctx context.Context, page *bustop.TalkPage) error
	AppendTalksFn   func(ctx context.Context, href string, page int, talks []bustop.Talk) (int, error)
	FindThreadFn    func(ctx context.Context, href string) (*bustop.TalkPage, error)
}

func (s *ThreadService) ReplaceThread(ctx context.Context, page *bustop.TalkPage) error {
	return s.ReplaceThreadFn(ctx, page)
}

func (s *ThreadService) AppendTalks(ctx context.Context, href string, page int, talks []bustop.Talk) (int, error) {
	return s.AppendTalksFn(ctx, href, page, talks)
}

func (s *ThreadService) FindThread(ctx context.Context, href string) (*bustop.TalkPage, error) {
	return s.FindThreadFn(ctx, href)
}

// ThreadWriter is a mock implementation of bustop.ThreadWriter.
type ThreadWriter struct {
	WriteThreadFn func(ctx context.Context, page *bustop.TalkPage) (string, error)
}

func (w *ThreadWriter) WriteThread(ctx context.Context, page *bustop.TalkPage) (string, error) {
	return w.WriteThreadFn(ctx, page)
}
