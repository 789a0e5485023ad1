package echoServer

import "log/slog"

// LogInvalidator satisfies the services' view-invalidation port. There is
// no server-side render cache in this deployment, so changed views are
// only reported; a CDN or frontend cache hooks in here.
type LogInvalidator struct {
	Log *slog.Logger
}

func (l LogInvalidator) Invalidate(views ...string) {
	l.Log.Debug("views invalidated", "views", views)
}
