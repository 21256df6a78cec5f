package gateway

// dashboardPage is the embedded single-page dashboard. Charts render with
// Plotly from CDN; live updates arrive over the /ws stream.
const dashboardPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>ETF vs NAV Tracker</title>
<script src="https://cdn.plot.ly/plotly-2.35.2.min.js"></script>
<style>
  :root { --up: #1a7f37; --down: #cf222e; --up-bg: rgba(75,192,192,0.2); --down-bg: rgba(255,99,132,0.2); }
  * { box-sizing: border-box; }
  body { margin: 0; font-family: -apple-system, "Segoe UI", Roboto, sans-serif; background: #f6f8fa; color: #1f2328; }
  .layout { display: flex; min-height: 100vh; }
  aside { width: 290px; padding: 20px; background: #fff; border-right: 1px solid #d0d7de; }
  main { flex: 1; padding: 20px 28px; max-width: 1200px; }
  h1 { font-size: 1.4em; margin-top: 0; }
  h2 { font-size: 1.05em; }
  aside p, aside li { font-size: 0.88em; line-height: 1.45; }
  button { padding: 8px 14px; border: 1px solid #d0d7de; border-radius: 6px; background: #f6f8fa; cursor: pointer; font-size: 0.9em; }
  button:hover { background: #eaeef2; }
  .cards { display: flex; gap: 16px; margin-bottom: 18px; }
  .card { flex: 1; background: #fff; border: 1px solid #d0d7de; border-radius: 8px; padding: 14px 18px; }
  .card .label { font-size: 0.8em; color: #656d76; }
  .card .value { font-size: 1.5em; font-weight: 600; margin-top: 4px; }
  .card .delta { font-size: 0.85em; margin-top: 2px; }
  .up { color: var(--up); }
  .down { color: var(--down); }
  .cell-up { color: var(--up); background: var(--up-bg); }
  .cell-down { color: var(--down); background: var(--down-bg); }
  #chart { background: #fff; border: 1px solid #d0d7de; border-radius: 8px; }
  table { width: 100%; border-collapse: collapse; background: #fff; font-size: 0.88em; }
  th, td { padding: 6px 10px; border-bottom: 1px solid #d8dee4; text-align: right; }
  th { background: #f6f8fa; color: #656d76; }
  td:first-child, th:first-child { text-align: left; }
  #waiting { padding: 60px; text-align: center; color: #656d76; background: #fff; border: 1px dashed #d0d7de; border-radius: 8px; }
  details { margin-top: 18px; background: #fff; border: 1px solid #d0d7de; border-radius: 8px; padding: 10px 16px; }
  pre { max-height: 320px; overflow: auto; font-size: 0.78em; }
  .status { font-size: 0.82em; color: #656d76; margin: 10px 0; }
  .hidden { display: none; }
</style>
</head>
<body>
<div class="layout">
  <aside>
    <h2>About SPY and NAV</h2>
    <p><b>SPY</b> is an ETF (Exchange Traded Fund) that tracks the S&amp;P 500 index.</p>
    <p><b>NAV (Net Asset Value)</b> represents the underlying value of the assets in the fund.</p>
    <p><b>The difference</b> between the ETF's market price and its NAV can indicate:</p>
    <ul>
      <li>Market sentiment</li>
      <li>Arbitrage opportunities</li>
      <li>Liquidity conditions</li>
    </ul>
    <h2>Data Sources</h2>
    <p>Price data: Yahoo Finance. NAV: approximated from the benchmark
    index value — not a genuine fund valuation.</p>
    <button id="refresh">Force Refresh Data</button>
    <p class="status" id="market"></p>
  </aside>
  <main>
    <h1 id="title">ETF vs NAV Real-time Tracker</h1>
    <p class="status" id="conn">connecting…</p>
    <div id="waiting">Waiting for data… First update should appear shortly.</div>
    <div id="content" class="hidden">
      <div class="cards">
        <div class="card"><div class="label" id="price-label">Price</div><div class="value" id="price"></div></div>
        <div class="card"><div class="label">Estimated NAV</div><div class="value" id="nav"></div></div>
        <div class="card"><div class="label">Difference (Price - NAV)</div><div class="value" id="diff"></div><div class="delta" id="diffpct"></div></div>
      </div>
      <div id="chart" style="height:560px"></div>
      <h2>Real-Time Price Tracking</h2>
      <table>
        <thead><tr><th>Time</th><th>Price</th><th>Previous</th><th>Change</th><th>Change %</th><th>NAV</th><th>Difference</th></tr></thead>
        <tbody id="rows"></tbody>
      </table>
      <details><summary>View Raw Data</summary><pre id="raw"></pre></details>
      <p class="status" id="updated"></p>
    </div>
  </main>
</div>
<script>
let samples = [];
let bufferCap = 3600;
let symbol = "SPY";

const fmt2 = v => "$" + v.toFixed(2);
const fmt4 = v => "$" + v.toFixed(4);
const dirClass = d => d === "up" ? "cell-up" : d === "down" ? "cell-down" : "";

function chartLayout() {
  return {
    grid: { rows: 2, columns: 1, pattern: "independent" },
    margin: { l: 50, r: 20, t: 40, b: 40 },
    template: "plotly_white",
    legend: { orientation: "h", y: 1.08, x: 1, xanchor: "right" },
    annotations: [
      { text: symbol + " Price vs NAV", showarrow: false, xref: "paper", yref: "paper", x: 0, y: 1.03, font: { size: 13 } },
      { text: "Price-NAV Difference", showarrow: false, xref: "paper", yref: "paper", x: 0, y: 0.41, font: { size: 13 } }
    ],
    xaxis: { matches: "x2" },
    shapes: [{ type: "line", xref: "x2 domain", yref: "y2", x0: 0, x1: 1, y0: 0, y1: 0,
               line: { color: "red", dash: "dash", width: 1 }, opacity: 0.7 }]
  };
}

function render() {
  if (samples.length === 0) return;
  document.getElementById("waiting").classList.add("hidden");
  document.getElementById("content").classList.remove("hidden");

  const latest = samples[samples.length - 1];
  document.getElementById("price").textContent = fmt2(latest.price);
  document.getElementById("nav").textContent = fmt2(latest.nav);
  const diffEl = document.getElementById("diff");
  diffEl.textContent = fmt4(latest.difference);
  diffEl.className = "value " + (latest.difference > 0 ? "up" : latest.difference < 0 ? "down" : "");
  const pct = latest.nav !== 0 ? latest.difference / latest.nav * 100 : 0;
  document.getElementById("diffpct").textContent = pct.toFixed(4) + "%";
  document.getElementById("updated").textContent = "Last updated: " + new Date(latest.ts).toLocaleTimeString();

  const ts = samples.map(s => s.ts);
  Plotly.react("chart", [
    { x: ts, y: samples.map(s => s.price), mode: "lines", name: symbol + " Price",
      line: { color: "#1f77b4", width: 2 }, xaxis: "x", yaxis: "y" },
    { x: ts, y: samples.map(s => s.nav), mode: "lines", name: "NAV Value",
      line: { color: "#ff7f0e", width: 2 }, xaxis: "x", yaxis: "y" },
    { x: ts, y: samples.map(s => s.difference), mode: "lines", name: "Difference",
      line: { color: "#2ca02c", width: 2 }, fill: "tozeroy", xaxis: "x2", yaxis: "y2" }
  ], chartLayout(), { responsive: true, displayModeBar: false });

  document.getElementById("raw").textContent = JSON.stringify(samples, null, 1);
}

function renderTable(rows) {
  const body = document.getElementById("rows");
  body.innerHTML = "";
  for (const r of rows) {
    const tr = document.createElement("tr");
    const cells = [
      [new Date(r.ts).toLocaleTimeString(), ""],
      [fmt2(r.price), ""],
      [r.prevPrice != null ? fmt2(r.prevPrice) : "", ""],
      [r.change != null ? fmt4(r.change) : "", dirClass(r.changeDir)],
      [r.changePct != null ? r.changePct.toFixed(4) + "%" : "", dirClass(r.changePctDir)],
      [fmt2(r.nav), ""],
      [fmt4(r.difference), dirClass(r.differenceDir)]
    ];
    for (const [text, cls] of cells) {
      const td = document.createElement("td");
      td.textContent = text;
      if (cls) td.className = cls;
      tr.appendChild(td);
    }
    body.appendChild(tr);
  }
}

function handleMessage(msg) {
  if (msg.type === "snapshot") {
    symbol = msg.symbol;
    bufferCap = msg.bufferCap;
    samples = msg.samples || [];
    document.getElementById("title").textContent = symbol + " ETF vs NAV Real-time Tracker";
    document.getElementById("price-label").textContent = symbol + " Price";
    renderTable(msg.table || []);
    render();
  } else if (msg.type === "sample") {
    samples.push(msg.sample);
    if (samples.length > bufferCap) samples.splice(0, samples.length - bufferCap);
    renderTable(msg.table || []);
    render();
  }
}

function connect() {
  const proto = location.protocol === "https:" ? "wss://" : "ws://";
  const ws = new WebSocket(proto + location.host + "/ws");
  ws.onopen = () => { document.getElementById("conn").textContent = "live — updating every second"; };
  ws.onmessage = ev => {
    for (const line of ev.data.split("\n")) {
      if (line) handleMessage(JSON.parse(line));
    }
  };
  ws.onclose = () => {
    document.getElementById("conn").textContent = "disconnected — retrying…";
    setTimeout(connect, 2000);
  };
}
connect();

document.getElementById("refresh").addEventListener("click", () => {
  fetch("/api/refresh", { method: "POST" });
});

async function pollHealth() {
  try {
    const resp = await fetch("/api/health");
    const h = await resp.json();
    document.getElementById("market").textContent = h.marketStatus;
  } catch (e) { /* next poll */ }
}
pollHealth();
setInterval(pollHealth, 30000);
</script>
</body>
</html>
`
