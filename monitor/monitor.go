// Package monitor serves the admin job-health page.
package monitor

import (
	"bytes"
	"context"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"publishing-ops-api/middleware"
	"publishing-ops-api/services"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
)

// logTailBytes caps how much of the log file /admin/logs returns.
const logTailBytes = 64 << 10

// HealthReporter is satisfied by services.HealthService.
type HealthReporter interface {
	Report(ctx context.Context) (*services.HealthReport, error)
}

// RegisterAdminPage mounts GET /admin and GET /admin/logs behind a browser
// session. Non-admins get a 403 page.
func RegisterAdminPage(router *gin.Engine, authn *middleware.Authenticator, health HealthReporter, logFile string, logger *slog.Logger) {
	group := router.Group("/admin")
	group.Use(authn.RequirePageAuth(), requireAdminPage())
	group.GET("", func(c *gin.Context) {
		report, err := health.Report(c.Request.Context())
		if err != nil {
			logger.Error("health report failed", slog.String("error", err.Error()))
			c.Data(http.StatusInternalServerError, "text/plain; charset=utf-8", []byte("Unable to load job health"))
			return
		}
		var buf bytes.Buffer
		if err := pageTemplate.Execute(&buf, pageView{Report: report, User: middleware.CurrentUser(c).Email}); err != nil {
			logger.Error("render admin page", slog.String("error", err.Error()))
			c.Data(http.StatusInternalServerError, "text/plain; charset=utf-8", []byte("Unable to render page"))
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
	})
	group.GET("/logs", func(c *gin.Context) {
		data, err := tail(logFile, logTailBytes)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to read log"})
			return
		}
		c.Data(http.StatusOK, "text/plain; charset=utf-8", data)
	})
}

func requireAdminPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !middleware.CurrentUser(c).IsAdmin() {
			c.Data(http.StatusForbidden, "text/html; charset=utf-8", []byte(forbiddenPage))
			c.Abort()
			return
		}
		c.Next()
	}
}

func tail(path string, n int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if size := info.Size(); size > n {
		if _, err := f.Seek(size-n, io.SeekStart); err != nil {
			return nil, err
		}
	}
	return io.ReadAll(f)
}

type pageView struct {
	Report *services.HealthReport
	User   string
}

var funcs = template.FuncMap{
	"ago": func(t time.Time) string {
		if t.IsZero() {
			return "never"
		}
		return humanize.Time(t)
	},
	"ms": func(d *int64) string {
		if d == nil {
			return "-"
		}
		return (time.Duration(*d) * time.Millisecond).String()
	},
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}

var pageTemplate = template.Must(template.New("admin").Funcs(funcs).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1.0" />
  <title>Ops Job Health</title>
  <style>
    * { margin: 0; padding: 0; box-sizing: border-box; }
    body {
      background: linear-gradient(135deg, #0f0f0f 0%, #1a1a2e 100%);
      color: #e0e0e0;
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
      min-height: 100vh;
      padding: 20px;
    }
    .container { max-width: 1200px; margin: 0 auto; }
    h1 { font-size: 2rem; font-weight: 700; color: #a5b4fc; margin-bottom: 0.5rem; }
    .meta { color: #94a3b8; font-size: 0.875rem; margin-bottom: 2rem; }
    .card {
      background: rgba(255, 255, 255, 0.05);
      border: 1px solid rgba(255, 255, 255, 0.1);
      border-radius: 16px;
      padding: 1.5rem;
      margin-bottom: 2rem;
    }
    h2 { font-size: 1.25rem; color: #a5b4fc; margin-bottom: 1rem; }
    table { width: 100%; border-collapse: collapse; font-size: 0.9rem; }
    th, td { text-align: left; padding: 0.5rem; border-bottom: 1px solid rgba(255, 255, 255, 0.08); }
    .ok { color: #4ade80; }
    .bad { color: #f87171; }
    .muted { color: #64748b; }
    #logs {
      background: rgba(0, 0, 0, 0.3);
      padding: 1rem;
      border-radius: 12px;
      max-height: 400px;
      overflow-y: auto;
      white-space: pre-wrap;
      font-family: 'Monaco', 'Consolas', monospace;
      font-size: 0.8rem;
    }
    button {
      padding: 0.5rem 1rem; border: none; border-radius: 8px; cursor: pointer; font-weight: 600;
      background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: #fff;
    }
  </style>
</head>
<body>
  <div class="container">
    <h1>Job Health</h1>
    <p class="meta">Signed in as {{.User}} · database: <span class="{{if eq .Report.Database "ok"}}ok{{else}}bad{{end}}">{{.Report.Database}}</span> · generated {{ago .Report.GeneratedAt}}</p>

    <div class="card">
      <h2>Latest run per job</h2>
      <table>
        <thead><tr><th>Job</th><th>Status</th><th>Trigger</th><th>When</th><th>Duration</th><th>Error</th></tr></thead>
        <tbody>
        {{- range .Report.Jobs}}
          <tr>
            <td>{{.Name}}</td>
            {{- with .LastRun}}
            <td class="{{if eq .Status "success"}}ok{{else}}bad{{end}}">{{.Status}}</td>
            <td>{{.Trigger}}</td>
            <td>{{ago .CreatedAt}}</td>
            <td>{{ms .DurationMs}}</td>
            <td>{{deref .Error}}</td>
            {{- else}}
            <td class="muted" colspan="5">never run</td>
            {{- end}}
          </tr>
        {{- end}}
        </tbody>
      </table>
    </div>

    <div class="card">
      <h2>Directory sync</h2>
      {{- with .Report.LastSync}}
      <p><span class="{{if eq .Status "SUCCESS"}}ok{{else}}bad{{end}}">{{.Status}}</span> {{ago .CreatedAt}} · range {{.SheetRange}} ·
        fetched {{.FetchedCount}}, created {{.CreatedCount}}, updated {{.UpdatedCount}}, skipped {{.SkippedCount}}</p>
      {{- with .ErrorMessage}}<p class="bad">{{deref .}}</p>{{end}}
      {{- else}}
      <p class="muted">No sync has run yet.</p>
      {{- end}}
    </div>

    <div class="card">
      <h2>Recent failures</h2>
      {{- if .Report.RecentFailures}}
      <table>
        <thead><tr><th>Job</th><th>When</th><th>Error</th></tr></thead>
        <tbody>
        {{- range .Report.RecentFailures}}
          <tr><td>{{.JobName}}</td><td>{{ago .CreatedAt}}</td><td class="bad">{{deref .Error}}</td></tr>
        {{- end}}
        </tbody>
      </table>
      {{- else}}
      <p class="muted">No recent failures.</p>
      {{- end}}
    </div>

    <div class="card">
      <h2>Server log <button onclick="fetchLogs()">Refresh</button></h2>
      <pre id="logs">Loading logs...</pre>
    </div>
  </div>
  <script>
    function fetchLogs() {
      fetch('/admin/logs', { credentials: 'same-origin' })
        .then(res => res.text())
        .then(data => {
          const el = document.getElementById('logs');
          el.textContent = data;
          el.scrollTop = el.scrollHeight;
        });
    }
    fetchLogs();
  </script>
</body>
</html>`))

const forbiddenPage = `<!DOCTYPE html>
<html lang="en"><head><meta charset="UTF-8" /><title>Forbidden</title></head>
<body style="font-family:sans-serif;background:#0f0f0f;color:#e0e0e0;padding:40px">
<h1>403 Forbidden</h1><p>This page is only available to administrators.</p>
</body></html>`
