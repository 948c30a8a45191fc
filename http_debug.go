package wmata

import (
	"net/http"
	"net/http/httputil"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/mycelian/wmata/internal/transport"
)

// debugTransport logs full request and response dumps at debug level.
// Enable it with WithDebugLogging(true), or WMATA_DEBUG=true / DEBUG=true.
//
// The api_key is masked in the logged URL but appears in the request dump.
type debugTransport struct{ base http.RoundTripper }

func (dt *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	redacted := transport.RedactURL(req.URL)
	if reqDump, err := httputil.DumpRequestOut(req, false); err == nil {
		log.Debug().Str("method", req.Method).Str("url", redacted).Str("request_dump", string(reqDump)).Msg("HTTP request")
	}

	resp, err := dt.base.RoundTrip(req)
	if err != nil {
		log.Error().Err(err).Str("method", req.Method).Str("url", redacted).Msg("HTTP request failed")
		return nil, err
	}

	if respDump, err := httputil.DumpResponse(resp, true); err == nil {
		log.Debug().Str("method", req.Method).Str("url", redacted).Int("status_code", resp.StatusCode).Str("response_dump", string(respDump)).Msg("HTTP response")
	}
	return resp, nil
}

// debugLoggingRequested reports whether WMATA_DEBUG or DEBUG is "true".
func debugLoggingRequested() bool {
	return os.Getenv("WMATA_DEBUG") == "true" || os.Getenv("DEBUG") == "true"
}
