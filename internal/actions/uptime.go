package actions

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/vietddude/autodash/internal/core/domain"
	"github.com/vietddude/autodash/internal/core/retry"
)

// Uptime checks whether target answers with 200. Any other status is a successful check
// of a site that is down; only transport failures fail the action.
func (s *Service) Uptime(ctx context.Context, target string) domain.Result {
	target = strings.TrimSpace(target)
	if target == "" {
		target = s.cfg.Uptime.DefaultURL
	}
	if target == "" {
		return domain.Failure(domain.ActionUptime, domain.KindInput, "Please enter a website URL to check.")
	}
	if s.deps.Uptime == nil {
		return domain.Failure(domain.ActionUptime, domain.KindConfig, "Website checker is not configured.")
	}

	status, err := retry.Do(ctx, s.policy(), func(ctx context.Context) (int, error) {
		return s.deps.Uptime.Check(ctx, target)
	}, s.retryOpts("uptime")...)
	if err != nil {
		kind := domain.KindOf(err)
		if kind == domain.KindNone {
			kind = domain.KindNetwork
		}
		return domain.Failure(domain.ActionUptime, kind, fmt.Sprintf("🔴 %s is DOWN (Error: %v)", target, err))
	}

	if status == http.StatusOK {
		return domain.Success(domain.ActionUptime, fmt.Sprintf("🟢 %s is UP (Status: %d)", target, status))
	}
	return domain.Success(domain.ActionUptime, fmt.Sprintf("🟠 %s is DOWN (Status: %d)", target, status))
}
