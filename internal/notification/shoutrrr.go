package notification

import (
	"context"
	"io"
	"log"
	"slices"
	"time"

	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/alerting"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/errors"
)

// ProviderShoutrrr is the provider name used in logs and metrics.
const ProviderShoutrrr = "shoutrrr"

// shoutrrrSender is the part of router.ServiceRouter the provider uses.
type shoutrrrSender interface {
	Send(message string, params *stypes.Params) []error
}

// ShoutrrrProvider sends alerts via nicholas-fedor/shoutrrr.
// One sender serves all configured URLs.
type ShoutrrrProvider struct {
	urls   []string
	sender shoutrrrSender
}

// NewShoutrrrProvider builds the sender for urls. Invalid URLs fail here
// rather than at first delivery.
func NewShoutrrrProvider(urls []string, timeout time.Duration) (*ShoutrrrProvider, error) {
	if len(urls) == 0 {
		return nil, errors.Newf("at least one shoutrrr URL is required").
			Component("notification").
			Category(errors.CategoryConfiguration).
			Build()
	}

	sender, err := shoutrrr.CreateSender(urls...)
	if err != nil {
		// the raw error may echo tokens embedded in the URL
		return nil, errors.Newf("invalid shoutrrr URL configuration").
			Component("notification").
			Category(errors.CategoryConfiguration).
			Context("url_count", len(urls)).
			Build()
	}
	if timeout > 0 {
		sender.Timeout = timeout
	}
	sender.SetLogger(log.New(io.Discard, "", 0))

	return &ShoutrrrProvider{urls: slices.Clone(urls), sender: sender}, nil
}

func (s *ShoutrrrProvider) Name() string { return ProviderShoutrrr }

// Send delivers alert to every URL. The router applies its own timeout.
func (s *ShoutrrrProvider) Send(_ context.Context, alert *alerting.Alert) error {
	params := stypes.Params{}
	params.SetTitle(alertTitle(alert))

	for i, err := range s.sender.Send(alertMessage(alert), &params) {
		if err != nil {
			return errors.Newf("shoutrrr delivery failed: %v", err).
				Component("notification").
				Category(errors.CategoryNotification).
				Context("service_index", i).
				Context("alert_id", alert.ID).
				Build()
		}
	}
	return nil
}
