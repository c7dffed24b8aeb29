package player

// pageHTML is the kiosk page driven by the Browser backend.
const pageHTML = `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>kiosk</title>
<style>
  html, body { margin: 0; height: 100%; background: #000; color: #fff; font-family: sans-serif; }
  header { padding: 8px 16px; background: #1e1e2e; }
  body.bare header { display: none; }
  video { width: 100%; height: calc(100% - 40px); }
  body.bare video { height: 100%; }
</style>
<script src="https://cdn.jsdelivr.net/npm/hls.js@1"></script>
</head>
<body>
<header id="title"></header>
<video id="v" playsinline></video>
<script>
const v = document.getElementById("v");
const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
let pendingSeek = null;

function send(m) { if (ws.readyState === 1) ws.send(JSON.stringify(m)); }
function ack(seq, err) { send({type: "ack", seq: seq, error: err ? String(err) : ""}); }
function status() {
  send({
    type: "status",
    positionMs: v.currentTime * 1000,
    durationMs: isFinite(v.duration) ? v.duration * 1000 : 0,
    playing: !v.paused && !v.ended && v.readyState > 2,
    buffering: !v.paused && v.readyState <= 2,
    ended: v.ended,
    loaded: v.readyState > 0 && isFinite(v.duration),
    volume: v.muted ? 0 : v.volume
  });
}

function load(m) {
  document.getElementById("title").textContent = m.title;
  if (m.url.endsWith(".m3u8") && !v.canPlayType("application/vnd.apple.mpegurl") && window.Hls) {
    const hls = new Hls();
    hls.loadSource(m.url);
    hls.attachMedia(v);
  } else {
    v.src = m.url;
  }
  v.pause();
  ack(m.seq);
}

ws.onmessage = (e) => {
  const m = JSON.parse(e.data);
  switch (m.type) {
    case "load": load(m); break;
    case "play": v.play().then(() => ack(m.seq), (err) => ack(m.seq, err)); break;
    case "pause": v.pause(); ack(m.seq); break;
    case "seek":
      pendingSeek = m;
      v.currentTime = (m.positionMs || 0) / 1000;
      break;
    case "chrome":
      document.body.classList.toggle("bare", !!m.hidden);
      if (m.hidden && document.documentElement.requestFullscreen) document.documentElement.requestFullscreen().catch(() => {});
      if (!m.hidden && document.fullscreenElement) document.exitFullscreen().catch(() => {});
      ack(m.seq);
      break;
  }
};

v.addEventListener("seeked", () => {
  if (!pendingSeek) return;
  const m = pendingSeek;
  pendingSeek = null;
  if (m.resume) v.play().then(() => ack(m.seq), (err) => ack(m.seq, err)); else ack(m.seq);
});
v.addEventListener("error", () => send({type: "error", message: v.error ? v.error.message || ("media error " + v.error.code) : "media error"}));
v.addEventListener("timeupdate", status);
v.addEventListener("ended", status);
setInterval(status, 250);
</script>
</body>
</html>
`
