package api

const eventsDocsHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Navigation Events - Property Dashboard</title>
  <style>
    body { margin: 0; font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; font-size: 14px; line-height: 1.65; background: #0d1117; color: #c9d1d9; }
    main { max-width: 860px; margin: 0 auto; padding: 32px 24px; }
    a { color: #58a6ff; text-decoration: none; }
    code, pre { font-family: ui-monospace, SFMono-Regular, Menlo, monospace; font-size: 13px; }
    pre { background: #161b22; border: 1px solid #30363d; border-radius: 6px; padding: 12px 16px; overflow-x: auto; }
    table { border-collapse: collapse; width: 100%; }
    th, td { text-align: left; padding: 6px 10px; border-bottom: 1px solid #30363d; }
  </style>
</head>
<body>
<main>
  <p><a href="/docs">&larr; REST API docs</a></p>
  <h1>Navigation events</h1>
  <p>Every tab activation walks a small state machine. Each transition is published for the
  session named by the <code>propdash_session</code> cookie. Both transports carry the same data.</p>

  <h2>Transports</h2>
  <table>
    <tr><th>Endpoint</th><th>Framing</th></tr>
    <tr><td><code>GET /ws/navigation</code></td><td>WebSocket text frames: <code>{"kind":"navigation","data":{...}}</code></td></tr>
    <tr><td><code>GET /events</code></td><td>Server-sent events: <code>event: navigation</code> followed by a <code>data:</code> line</td></tr>
  </table>
  <p>Append <code>?kinds=navigation</code> to filter by kind. Requests without a live session get <code>404</code>.</p>

  <h2>Payload</h2>
<pre>{
  "seq": 7,
  "tab": "reports",
  "state": "loaded",
  "error": ""
}</pre>

  <h2>States</h2>
  <table>
    <tr><th>State</th><th>Meaning</th></tr>
    <tr><td><code>activating</code></td><td>The active marker moved to the tab.</td></tr>
    <tr><td><code>inline_rendered</code></td><td>The dashboard overview was restored. Terminal.</td></tr>
    <tr><td><code>loading</code></td><td>The loading placeholder is shown and the fragment fetch started.</td></tr>
    <tr><td><code>loaded</code></td><td>Fragment content committed and charts rendered. Terminal.</td></tr>
    <tr><td><code>failed</code></td><td>The fetch failed; <code>error</code> holds the reason shown inline. Terminal.</td></tr>
    <tr><td><code>stale</code></td><td>A newer activation superseded this one; its result was discarded. Terminal.</td></tr>
  </table>
  <p>Only the highest <code>seq</code> reflects what the content region shows.</p>
</main>
</body>
</html>`
