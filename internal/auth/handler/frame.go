package handler

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"

	"auth-bridge/internal/auth"

	"github.com/gin-gonic/gin"
)

// frameTemplate posts the handshake result to the window that opened
// the login popup, then closes it. The target origin is pinned to the
// configured application origin so the response cannot leak to a
// foreign embedder.
var frameTemplate = template.Must(template.New("frame").Parse(`<!DOCTYPE html>
<html>
<body>
<script>
(function() {
  var payload = {{.Payload}};
  var target = window.opener || window.parent;
  target.postMessage(payload, {{.Origin}});
  window.close();
})();
</script>
</body>
</html>
`))

type framePayload struct {
	Type     string         `json:"type"`
	Token    string         `json:"token"`
	Response *auth.Response `json:"response"`
}

// renderFrame returns the completed handshake to the caller: an HTML
// postMessage page when an app origin is configured, plain JSON
// otherwise (API clients, tests).
func (h *Handler) renderFrame(c *gin.Context, token string, res *auth.Response) {
	payload := framePayload{
		Type:     "authorization_response",
		Token:    token,
		Response: res,
	}

	if h.appOrigin == "" {
		c.JSON(http.StatusOK, payload)
		return
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to encode response",
		})
		return
	}

	var buf bytes.Buffer
	err = frameTemplate.Execute(&buf, map[string]any{
		"Payload": template.JS(raw),
		"Origin":  h.appOrigin,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to render response",
		})
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
