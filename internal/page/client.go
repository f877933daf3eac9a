package page

import (
	"encoding/json"
	"fmt"
)

// clientJS wires the page to a tracker session: it reports scrolls and clicks
// inside the content area over a websocket and applies the hide, bar and
// reveal messages it gets back. Hiding covers both the bar and the outline
// panel; the toggle button opens and closes the panel locally.
const clientJS = `(function () {
  var bar = document.getElementById(%[2]s);
  var full = document.getElementById(%[3]s);
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + %[1]s);
  function send(msg) {
    if (ws.readyState === WebSocket.OPEN) ws.send(JSON.stringify(msg));
  }
  function hide() {
    bar.hidden = true;
    full.hidden = true;
  }
  window.addEventListener("scroll", function () {
    send({type: "scroll", y: Math.round(window.scrollY)});
  }, {passive: true});
  document.addEventListener("click", function (ev) {
    var el = ev.target;
    if (!el || !el.closest) return;
    var t = el.closest("[data-toggle]");
    if (t) {
      var panel = document.getElementById(t.getAttribute("data-toggle"));
      if (panel) panel.hidden = !panel.hidden;
      return;
    }
    if (el.closest(%[4]s)) send({type: "click"});
  });
  ws.onmessage = function (ev) {
    var msg = JSON.parse(ev.data);
    if (msg.type === "hide") hide();
    else if (msg.type === "reveal") bar.hidden = false;
    else if (msg.type === "bar") bar.innerHTML = msg.html;
  };
})();`

// ClientScript returns the page script that connects to the websocket
// endpoint at wsPath.
func ClientScript(wsPath string) string {
	return fmt.Sprintf(clientJS, jsString(wsPath), jsString(BarID), jsString(FullID), jsString("#"+ContentID))
}

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
