//go:build ruleguard

// Package gorules contains project lint rules for golangci-lint via ruleguard.
package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// WaitGroupGo flags the Add/Done goroutine pattern that wg.Go replaces.
func WaitGroupGo(m dsl.Matcher) {
	m.Match(`$wg.Add(1); go func() { defer $wg.Done(); $*body }()`).
		Where(m["wg"].Type.Is("*sync.WaitGroup") || m["wg"].Type.Is("sync.WaitGroup")).
		Report("use $wg.Go(func() { $body }) instead of manual Add/Done").
		Suggest("$wg.Go(func() { $body })")
}

// TestingContext flags background contexts in tests; t.Context is
// cancelled when the test ends.
func TestingContext(m dsl.Matcher) {
	m.Match(`context.Background()`, `context.TODO()`).
		Where(m.File().Name.Matches(`_test\.go$`) &&
			!m.File().PkgPath.Matches(`/internal/httpclient$`)).
		Report("use t.Context() instead of $$ in tests")
}

// TimeFormatConstants flags literal layouts that have named constants.
func TimeFormatConstants(m dsl.Matcher) {
	m.Match(`$t.Format("2006-01-02 15:04:05")`).
		Where(m["t"].Type.Is("time.Time")).
		Report("use time.DateTime").
		Suggest(`$t.Format(time.DateTime)`)

	m.Match(`$t.Format("2006-01-02")`).
		Where(m["t"].Type.Is("time.Time")).
		Report("use time.DateOnly").
		Suggest(`$t.Format(time.DateOnly)`)

	m.Match(`$t.Format("15:04:05")`).
		Where(m["t"].Type.Is("time.Time")).
		Report("use time.TimeOnly").
		Suggest(`$t.Format(time.TimeOnly)`)
}

// StdlibLogging flags stdlib loggers in service packages. Logs go through
// internal/logger so that module routing and levels apply.
func StdlibLogging(m dsl.Matcher) {
	m.Import("log")
	m.Match(`log.Printf($*_)`, `log.Println($*_)`, `log.Print($*_)`, `log.Fatalf($*_)`, `log.Fatal($*_)`).
		Where(m.File().PkgPath.Matches(`/internal/`) && !m.File().Name.Matches(`_test\.go$`)).
		Report("use internal/logger instead of the standard log package")

	m.Match(`fmt.Println($*_)`, `fmt.Printf($*_)`).
		Where(m.File().PkgPath.Matches(`/internal/`) && !m.File().Name.Matches(`_test\.go$`)).
		Report("use internal/logger instead of printing to stdout")
}

// GormContext flags queries issued without a context; statement
// timeouts and cancellation depend on WithContext.
func GormContext(m dsl.Matcher) {
	m.Match(
		`$db.Find($*_)`,
		`$db.First($*_)`,
		`$db.Create($*_)`,
		`$db.Delete($*_)`,
		`$db.Updates($*_)`,
	).
		Where(m["db"].Type.Is("*gorm.DB") &&
			m["db"].Text.Matches(`^(db|r\.db|s\.db)$`) &&
			!m.File().Name.Matches(`_test\.go$`)).
		Report("call $db.WithContext(ctx) before issuing a query")
}

// AlertingErrorCategory flags enhanced errors built without a category;
// telemetry filtering and HTTP status mapping read it.
func AlertingErrorCategory(m dsl.Matcher) {
	m.Match(`errors.New($err).Component($c).Build()`, `errors.Newf($*_).Component($c).Build()`).
		Where(m.File().PkgPath.Matches(`/internal/`)).
		Report("set .Category(...) on enhanced errors")
}
