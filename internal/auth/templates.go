package auth

// baseCSS is shared by both pages.
const baseCSS = `
        :root {
            --bg: #0b0d12;
            --card: #131722;
            --input: #1a1f2c;
            --border: #262c3b;
            --text: #e6e8ee;
            --muted: #7a8193;
            --accent: #5b8def;
            --success: #22c55e;
            --error: #ef4444;
        }

        * { margin: 0; padding: 0; box-sizing: border-box; }

        body {
            font-family: system-ui, -apple-system, "Segoe UI", sans-serif;
            background: var(--bg);
            color: var(--text);
            min-height: 100vh;
            display: flex;
            align-items: center;
            justify-content: center;
            padding: 2rem 1rem;
        }

        .container { width: 100%; max-width: 440px; }
        .prompt { font-family: ui-monospace, monospace; color: var(--muted); font-size: 0.8125rem; margin-bottom: 1.5rem; }
        .prompt::before { content: "$ "; color: var(--accent); }
        h1 { font-size: 1.5rem; margin-bottom: 0.25rem; }
        .subtitle { color: var(--muted); margin-bottom: 1.5rem; font-size: 0.9375rem; }
        .card { background: var(--card); border: 1px solid var(--border); border-radius: 12px; padding: 1.5rem; }
        code { font-family: ui-monospace, monospace; color: var(--accent); }
`

const setupTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Singlebase CLI Setup</title>
    <style>
` + baseCSS + `
        .form-group { margin-bottom: 1.25rem; }
        label { display: block; font-size: 0.8125rem; font-weight: 600; margin-bottom: 0.375rem; }
        input {
            width: 100%;
            padding: 0.625rem 0.75rem;
            background: var(--input);
            border: 1px solid var(--border);
            border-radius: 8px;
            color: var(--text);
            font-size: 0.9375rem;
        }
        input:focus { outline: none; border-color: var(--accent); }
        input.error { border-color: var(--error); }
        .hint { color: var(--muted); font-size: 0.75rem; margin-top: 0.375rem; }
        .divider { text-align: center; color: var(--muted); font-size: 0.75rem; margin: -0.5rem 0 0.75rem; }
        .btn-group { display: flex; gap: 0.75rem; margin-top: 1.5rem; }
        button { flex: 1; padding: 0.625rem; border-radius: 8px; font-size: 0.9375rem; font-weight: 600; cursor: pointer; }
        button:disabled { opacity: 0.5; cursor: not-allowed; }
        .btn-secondary { background: transparent; color: var(--text); border: 1px solid var(--border); }
        .btn-primary { background: var(--accent); color: #fff; border: 1px solid var(--accent); }
        .status { display: none; margin-top: 1rem; padding: 0.625rem 0.75rem; border-radius: 8px; font-size: 0.8125rem; }
        .status.show { display: block; }
        .status.loading { background: var(--input); color: var(--muted); }
        .status.success { background: rgba(34, 197, 94, 0.12); color: var(--success); }
        .status.error { background: rgba(239, 68, 68, 0.12); color: var(--error); }
    </style>
</head>
<body>
    <div class="container">
        <div class="prompt">singlebase profile login {{.Profile}} --browser</div>
        <h1>Connect to Singlebase</h1>
        <p class="subtitle">Save credentials to profile <code>{{.Profile}}</code></p>

        <div class="card">
            <form id="setupForm" autocomplete="off">
                <div class="form-group">
                    <label for="apiKey">API Key</label>
                    <input type="password" id="apiKey" name="apiKey" placeholder="Enter your project API key" required>
                </div>

                <div class="form-group">
                    <label for="endpointKey">Endpoint Key</label>
                    <input type="text" id="endpointKey" name="endpointKey" placeholder="my-project">
                    <div class="hint">Calls go to {{.BaseURL}}/&lt;endpoint key&gt;</div>
                </div>

                <div class="divider">or</div>

                <div class="form-group">
                    <label for="apiUrl">API URL</label>
                    <input type="url" id="apiUrl" name="apiUrl" placeholder="https://example.com/api/my-project">
                    <div class="hint">Takes precedence over the endpoint key</div>
                </div>

                <div class="btn-group">
                    <button type="button" id="testBtn" class="btn-secondary">Check</button>
                    <button type="submit" id="submitBtn" class="btn-primary">Save</button>
                </div>

                <div id="status" class="status"></div>
            </form>
        </div>
    </div>

    <script>
        const csrfToken = '{{.CSRFToken}}';
        const form = document.getElementById('setupForm');
        const testBtn = document.getElementById('testBtn');
        const submitBtn = document.getElementById('submitBtn');
        const status = document.getElementById('status');

        function showStatus(kind, message) {
            status.className = 'status show ' + kind;
            status.textContent = message;
        }

        function getFormData() {
            return {
                api_key: document.getElementById('apiKey').value.trim(),
                endpoint_key: document.getElementById('endpointKey').value.trim(),
                api_url: document.getElementById('apiUrl').value.trim()
            };
        }

        function validateFields(data) {
            const key = document.getElementById('apiKey');
            key.classList.toggle('error', !data.api_key);
            const target = !!(data.endpoint_key || data.api_url);
            document.getElementById('endpointKey').classList.toggle('error', !target);
            document.getElementById('apiUrl').classList.toggle('error', !target);
            return !!data.api_key && target;
        }

        async function post(path, data) {
            const response = await fetch(path, {
                method: 'POST',
                headers: { 'Content-Type': 'application/json', 'X-CSRF-Token': csrfToken },
                body: JSON.stringify(data)
            });
            return response.json();
        }

        function setBusy(busy) {
            testBtn.disabled = busy;
            submitBtn.disabled = busy;
        }

        testBtn.addEventListener('click', async () => {
            const data = getFormData();
            if (!validateFields(data)) return;
            setBusy(true);
            showStatus('loading', 'Checking...');
            try {
                const result = await post('/validate', data);
                if (result.success) {
                    showStatus('success', 'Calls will go to ' + result.url);
                } else {
                    showStatus('error', result.error);
                }
            } catch (err) {
                showStatus('error', 'Request failed: ' + err.message);
            } finally {
                setBusy(false);
            }
        });

        form.addEventListener('submit', async (e) => {
            e.preventDefault();
            const data = getFormData();
            if (!validateFields(data)) return;
            setBusy(true);
            showStatus('loading', 'Saving...');
            try {
                const result = await post('/submit', data);
                if (result.success) {
                    window.location.href = '/success?url=' + encodeURIComponent(result.url);
                    return;
                }
                showStatus('error', result.error);
            } catch (err) {
                showStatus('error', 'Request failed: ' + err.message);
            }
            setBusy(false);
        });
    </script>
</body>
</html>`

const successTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Setup Complete - Singlebase CLI</title>
    <style>
` + baseCSS + `
        .check { color: var(--success); font-size: 2rem; margin-bottom: 0.75rem; }
        .row { display: flex; justify-content: space-between; font-size: 0.875rem; padding: 0.5rem 0; border-bottom: 1px solid var(--border); }
        .row:last-child { border-bottom: none; }
        .row span:first-child { color: var(--muted); }
        .next { margin-top: 1.25rem; color: var(--muted); font-size: 0.8125rem; }
    </style>
</head>
<body>
    <div class="container">
        <div class="check">&#10003;</div>
        <h1>You're connected</h1>
        <p class="subtitle">You can close this tab and return to the terminal.</p>

        <div class="card">
            <div class="row"><span>Profile</span><code>{{.Profile}}</code></div>
            {{if .URL}}<div class="row"><span>Endpoint</span><code>{{.URL}}</code></div>{{end}}
        </div>

        <p class="next">Try <code>singlebase call db.find -f collection=users</code></p>
    </div>

    <script>
        fetch('/complete', { method: 'POST' }).catch(() => {});
    </script>
</body>
</html>`
