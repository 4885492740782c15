package submitter

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/statslite/go-statslite/internal/host"
	"github.com/statslite/go-statslite/internal/sysinfo"
)

// Revision is the protocol generation announced in the User-Agent
// header; the collection server selects the wire format from it.
const Revision = 7

const (
	// DefaultBaseURL is the collection endpoint used when no override
	// is configured.
	DefaultBaseURL = "http://report.mcstats.org"

	reportPath     = "/plugin/"
	requestTimeout = 30 * time.Second
)

// payload field order is not contractually significant but is kept
// stable for testability. The ping field is present only on the
// second and later submissions of a session.
type payload struct {
	GUID           string `json:"guid"`
	PluginVersion  string `json:"plugin_version"`
	ServerVersion  string `json:"server_version"`
	PlayersOnline  int    `json:"players_online"`
	AuthMode       bool   `json:"auth_mode"`
	OSName         string `json:"osname"`
	OSArch         string `json:"osarch"`
	OSVersion      string `json:"osversion"`
	Cores          int    `json:"cores"`
	RuntimeVersion string `json:"runtime_version"`
	Ping           bool   `json:"ping,omitempty"`
}

// Error is a failed submission, whether the exchange itself failed or
// the server answered with an error line. The reporter treats both the
// same way.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return "submit report: " + e.Message + ": " + e.Cause.Error()
	}
	return "submit report: " + e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Submitter performs one complete report exchange per call. Each
// exchange is a fresh connection; nothing is pooled or retried.
type Submitter struct {
	client  *http.Client
	baseURL string
	adapter host.Adapter
	collect func() sysinfo.Environment
	log     zerolog.Logger
}

// New creates a submitter posting to baseURL (DefaultBaseURL when
// empty) on behalf of the process described by adapter.
func New(baseURL string, adapter host.Adapter, logger zerolog.Logger) *Submitter {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Submitter{
		client: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				DisableKeepAlives: true,
			},
		},
		baseURL: baseURL,
		adapter: adapter,
		collect: sysinfo.Collect,
		log:     logger,
	}
}

// Submit builds the report payload from a live read of the host
// adapter and environment, compresses it, posts it, and interprets the
// first line of the response.
func (s *Submitter) Submit(guid string, ping bool) error {
	env := s.collect()
	report := payload{
		GUID:           guid,
		PluginVersion:  s.adapter.ProcessVersion(),
		ServerVersion:  s.adapter.HostVersion(),
		PlayersOnline:  s.adapter.ActiveUserCount(),
		AuthMode:       s.adapter.AuthenticatedMode(),
		OSName:         env.OSName,
		OSArch:         env.OSArch,
		OSVersion:      env.OSVersion,
		Cores:          env.Cores,
		RuntimeVersion: env.Runtime,
		Ping:           ping,
	}

	data, err := json.Marshal(report)
	if err != nil {
		return &Error{Message: "encode payload", Cause: err}
	}
	s.log.Debug().RawJSON("payload", data).Msg("generated report")

	body := data
	compressed := false
	if gz, err := gzipBytes(data); err == nil {
		// Compression failure is non-fatal: fall through and send the
		// payload uncompressed.
		body = gz
		compressed = true
	}

	endpoint := s.baseURL + reportPath + url.QueryEscape(s.adapter.ProcessName())
	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return &Error{Message: "create request", Cause: err}
	}

	req.Header.Set("User-Agent", "MCStats/"+strconv.Itoa(Revision))
	req.Header.Set("Content-Type", "application/json")
	if compressed {
		req.Header.Set("Content-Encoding", "gzip")
	}
	req.Header.Set("Accept", "application/json")
	// ContentLength and Close put the explicit Content-Length and
	// Connection: close headers on the wire.
	req.ContentLength = int64(len(body))
	req.Close = true

	s.log.Debug().
		Int("bytes", len(body)).
		Bool("gzip", compressed).
		Str("url", endpoint).
		Msg("sending report")

	resp, err := s.client.Do(req)
	if err != nil {
		return &Error{Message: "post report", Cause: err}
	}
	defer resp.Body.Close()

	line, err := readFirstLine(resp.Body)
	if err != nil {
		return &Error{Message: "read response", Cause: err}
	}

	s.log.Debug().
		Str("response", line).
		Int("status", resp.StatusCode).
		Msg("server replied")

	return classify(line)
}

// classify interprets the first response line. Anything that is not an
// explicit error line counts as success; the rest of the body is
// ignored.
func classify(line string) error {
	switch {
	case line == "":
		return &Error{Message: "null"}
	case strings.HasPrefix(line, "ERR"):
		return &Error{Message: line}
	case strings.HasPrefix(line, "7"):
		// Legacy numeric error convention: "7,<message>" or "7<message>".
		msg := strings.TrimPrefix(line, "7")
		msg = strings.TrimPrefix(msg, ",")
		return &Error{Message: msg}
	}
	return nil
}

// readFirstLine reads up to the first newline. A body ending without a
// newline still yields its single line; an empty body yields "".
func readFirstLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
