package api

// docsHTML frames the OpenAPI viewer under a bar linking back to the
// dashboard and the navigation event reference.
const docsHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="referrer" content="same-origin" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Property Dashboard API</title>
  <link href="https://unpkg.com/@stoplight/elements@9.0.0/styles.min.css" rel="stylesheet" />
  <script src="https://unpkg.com/@stoplight/elements@9.0.0/web-components.min.js" crossorigin="anonymous"></script>
  <style>
    body { height: 100vh; margin: 0; display: flex; flex-direction: column; font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; }
    header { display: flex; gap: 18px; align-items: center; padding: 10px 20px; background: #1f2a44; color: #fff; font-size: 13px; }
    header strong { font-size: 15px; margin-right: auto; }
    header a { color: #cfe0ff; text-decoration: none; }
    header a:hover { text-decoration: underline; }
    elements-api { flex: 1; min-height: 0; }
  </style>
</head>
<body>
  <header>
    <strong>Property Dashboard API</strong>
    <a href="/">Dashboard</a>
    <a href="/docs/events">Navigation events</a>
    <a href="/health">Health</a>
    <a href="/openapi.json">openapi.json</a>
  </header>
  <elements-api
    apiDescriptionUrl="/openapi.json"
    router="hash"
    layout="sidebar"
    tryItCredentialsPolicy="same-origin"
  />
</body>
</html>`
