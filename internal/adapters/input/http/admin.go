package http

const adminPage = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Yoctopuce LED Bridge Admin</title>
    <style>
        body { font-family: sans-serif; max-width: 1000px; margin: 40px auto; padding: 20px; line-height: 1.6; background-color: #f4f4f9; }
        section { padding: 20px; background: white; border: 1px solid #ccc; border-radius: 4px; margin-bottom: 20px; }
        label { display: block; margin-bottom: 5px; font-weight: bold; }
        input[type="text"], select { width: 100%; padding: 8px; margin-bottom: 10px; box-sizing: border-box; border: 1px solid #ccc; border-radius: 4px; }
        button { padding: 8px 12px; background: #007bff; color: white; border: none; cursor: pointer; border-radius: 4px; }
        button:hover { background: #0056b3; }
        button.delete { background: #dc3545; }
        table { width: 100%; border-collapse: collapse; }
        th, td { border: 1px solid #ddd; padding: 10px; text-align: left; }
        th { background-color: #f8f9fa; }
        #status { padding: 10px; border-radius: 4px; display: none; position: fixed; bottom: 20px; right: 20px; }
        .success { background: #d4edda; color: #155724; }
        .error { background: #f8d7da; color: #721c24; }
    </style>
</head>
<body>
    <h1>Yoctopuce LED Bridge</h1>

    <section>
        <h2>Add a hub</h2>
        <form id="entryForm">
            <label for="url">Hub URL</label>
            <input type="text" id="url" placeholder="usb, 192.168.1.20 or user:pass@hub.local:4444">
            <label for="color_mode">Color mode</label>
            <select id="color_mode">
                <option value="hs">HS</option>
                <option value="rgb">RGB</option>
            </select>
            <button type="submit">Submit</button>
        </form>
    </section>

    <section>
        <h2>Hubs</h2>
        <table id="entriesTable">
            <thead><tr><th>Title</th><th>Serial</th><th>State</th><th>Actions</th></tr></thead>
            <tbody></tbody>
        </table>
    </section>

    <section>
        <h2>Displays</h2>
        <table id="textsTable">
            <thead><tr><th>Display</th><th>Text</th><th></th></tr></thead>
            <tbody></tbody>
        </table>
    </section>

    <div id="status"></div>

    <script>
        const flowErrors = {
            invalid_url: 'Invalid URL',
            cannot_connect: 'Cannot connect to the hub',
            invalid_hub: 'Hub registration failed',
            no_leds: 'No ColorLedCluster found on this hub',
            unknown: 'Unexpected error'
        };

        function cell(tr, text) {
            const td = document.createElement('td');
            td.textContent = text;
            tr.appendChild(td);
            return td;
        }

        function button(label, onClick, cls) {
            const b = document.createElement('button');
            b.textContent = label;
            if (cls) b.className = cls;
            b.addEventListener('click', onClick);
            return b;
        }

        async function loadEntries() {
            const res = await fetch('/admin/entries');
            const entries = await res.json();
            const tbody = document.querySelector('#entriesTable tbody');
            tbody.replaceChildren();
            entries.forEach(e => {
                const tr = document.createElement('tr');
                cell(tr, e.title);
                cell(tr, e.unique_id);
                cell(tr, e.state);
                const actions = cell(tr, '');
                const diag = document.createElement('a');
                diag.href = '/admin/entries/' + encodeURIComponent(e.entry_id) + '/diagnostics';
                diag.target = '_blank';
                diag.textContent = 'Diagnostics';
                actions.append(
                    button('Reload', () => reloadEntry(e.entry_id)), ' ',
                    diag, ' ',
                    button('Delete', () => removeEntry(e.entry_id), 'delete'));
                tbody.appendChild(tr);
            });
        }

        async function loadTexts() {
            const res = await fetch('/admin/texts');
            const texts = await res.json();
            const tbody = document.querySelector('#textsTable tbody');
            tbody.replaceChildren();
            texts.forEach((t, i) => {
                const tr = document.createElement('tr');
                cell(tr, t.name);
                const input = document.createElement('input');
                input.type = 'text';
                input.id = 'text_' + i;
                input.value = t.state.value;
                cell(tr, '').appendChild(input);
                cell(tr, '').appendChild(button('Set', () => setText(t.id, i)));
                tbody.appendChild(tr);
            });
        }

        async function reloadEntry(id) {
            const res = await fetch('/admin/entries/' + encodeURIComponent(id) + '/reload', { method: 'POST' });
            showStatus(res.ok ? 'Hub reloaded' : 'Error: hub not ready');
            refresh();
        }

        async function removeEntry(id) {
            if (!confirm('Remove this hub?')) return;
            await fetch('/admin/entries/' + encodeURIComponent(id), { method: 'DELETE' });
            refresh();
        }

        async function setText(id, i) {
            const value = document.getElementById('text_' + i).value;
            const res = await fetch('/admin/texts/' + encodeURIComponent(id), {
                method: 'PUT',
                headers: { 'Content-Type': 'application/json' },
                body: JSON.stringify({ value: value })
            });
            showStatus(res.ok ? 'Text updated' : 'Error updating text');
        }

        document.getElementById('entryForm').onsubmit = async (ev) => {
            ev.preventDefault();
            const res = await fetch('/admin/entries', {
                method: 'POST',
                headers: { 'Content-Type': 'application/json' },
                body: JSON.stringify({
                    url: document.getElementById('url').value,
                    color_mode: document.getElementById('color_mode').value
                })
            });
            const result = await res.json();
            if (result.type === 'create_entry') {
                showStatus('Hub added: ' + result.entry.title);
            } else if (result.type === 'abort') {
                showStatus('Error: hub already configured');
            } else if (result.errors) {
                showStatus('Error: ' + (flowErrors[result.errors.base] || result.errors.base));
            }
            refresh();
        };

        function showStatus(msg) {
            const s = document.getElementById('status');
            s.textContent = msg;
            s.style.display = 'block';
            s.className = msg.startsWith('Error') ? 'error' : 'success';
            setTimeout(() => { s.style.display = 'none'; }, 3000);
        }

        function refresh() {
            loadEntries();
            loadTexts();
        }

        refresh();
    </script>
</body>
</html>
`
