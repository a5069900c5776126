// Package server implements the servelive development HTTP server: a
// static file handler for one directory tree plus live change
// notifications delivered to browsers over server-sent events.
package server

import (
	"bytes"
	"fmt"
)

// autoReloadScript is the JavaScript injected into HTML pages so the
// browser reloads itself when files change. The %s is the event-stream
// path. The source is closed before reloading; after the reload the fresh
// page opens a new stream. EventSource reconnects on its own after
// transient errors, so onerror only logs.
const autoReloadScript = `<script>
(function() {
  var source = new EventSource("/%s");
  source.addEventListener("files-changed", function() {
    source.close();
    location.reload();
  });
  source.onerror = function() {
    console.log("auto-reload: event stream interrupted, reconnecting");
  };
})();
</script>`

// InjectAutoReload inserts the auto-reload script into an HTML document.
// If a </body> tag is found, the script is inserted immediately before
// it; otherwise the script is appended to the end of the document.
func InjectAutoReload(html []byte, eventPath string) []byte {
	script := fmt.Appendf(nil, autoReloadScript, eventPath)

	idx := bytes.LastIndex(html, []byte("</body>"))
	if idx == -1 {
		// No </body> tag found; append script at the end.
		return append(html, script...)
	}

	result := make([]byte, 0, len(html)+len(script))
	result = append(result, html[:idx]...)
	result = append(result, script...)
	result = append(result, html[idx:]...)
	return result
}
