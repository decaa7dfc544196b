package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/haneimo/harts-viewer/internal/config"
	"github.com/haneimo/harts-viewer/internal/model"
	"github.com/haneimo/harts-viewer/internal/service/replay"
	appErr "github.com/haneimo/harts-viewer/pkg/errors"
	"github.com/haneimo/harts-viewer/pkg/logger"

	"go.uber.org/zap"
)

// Service retrieves replay logs from remote URLs. A failed fetch never
// touches any existing session; the caller only ever receives a fully
// parsed GameLog or an error.
type Service struct {
	client  *http.Client
	maxBody int64
	demo    *model.GameLog
}

func NewService() *Service {
	cfg := config.GlobalConfig.Fetch
	return &Service{
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		maxBody: cfg.MaxBodyBytes,
		demo:    buildDemoLog(),
	}
}

// DemoLog returns the bundled demo replay. The log is deeply immutable
// so sharing one instance across sessions is safe.
func (s *Service) DemoLog() *model.GameLog {
	return s.demo
}

// FetchLog downloads and parses a replay log. Non-2xx upstream
// responses surface as ErrFetchFailed with the status attached.
func (s *Service) FetchLog(ctx context.Context, rawURL string) (*model.GameLog, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: invalid url", appErr.ErrFetchFailed)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErr.ErrFetchFailed, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErr.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: upstream status %d", appErr.ErrFetchFailed, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErr.ErrFetchFailed, err)
	}
	if int64(len(raw)) > s.maxBody {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", appErr.ErrFetchFailed, s.maxBody)
	}

	lg, err := replay.ParseGameLog(raw)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("fetched replay log",
		zap.String("url", u.String()),
		zap.Int("turns", len(lg.Turns)),
	)
	return lg, nil
}
