// # internal/codegen/runtime.go
package codegen

// clientRuntime is the reactive runtime emitted at the top of every client
// script. Signal writes never re-run effects synchronously: dirty effects are
// batched and flushed once per microtask, so a slot re-evaluates exactly once
// per mutation batch.
const clientRuntime = `const __j = (() => {
  let active = null;
  const pending = new Set();
  let queued = false;
  function flush() {
    queued = false;
    const run = [...pending];
    pending.clear();
    for (const fn of run) fn();
  }
  function schedule(fn) {
    pending.add(fn);
    if (!queued) { queued = true; queueMicrotask(flush); }
  }
  function signal(v) {
    const subs = new Set();
    return {
      get value() { if (active) subs.add(active); return v; },
      set value(nv) { if (Object.is(nv, v)) return; v = nv; subs.forEach(schedule); },
    };
  }
  function computed(fn) {
    const inner = signal(undefined);
    effect(() => { inner.value = fn(); });
    return { get value() { return inner.value; } };
  }
  function effect(fn) {
    const run = () => { const prev = active; active = run; try { fn(); } finally { active = prev; } };
    run();
    return run;
  }
  function element(tag, attrs) {
    const el = document.createElement(tag);
    for (const k in attrs || {}) setAttr(el, k, attrs[k]);
    return el;
  }
  function setAttr(el, name, v) {
    if (name === "value" && "value" in el) { el.value = v; return; }
    if (v === false || v == null) { el.removeAttribute(name); return; }
    el.setAttribute(name, v === true ? "" : String(v));
  }
  function text(s) { return document.createTextNode(s == null ? "" : String(s)); }
  function setText(node, s) { node.textContent = s == null ? "" : String(s); }
  function append(parent, child) { parent.appendChild(child); return child; }
  function fragment() { return document.createDocumentFragment(); }
  function on(el, event, handler) { el.addEventListener(event, handler); }
  function mount(component) {
    const go = () => document.body.appendChild(component({}));
    if (document.readyState === "loading") document.addEventListener("DOMContentLoaded", go);
    else go();
  }
  function variant(enumName, name, ...fields) {
    return { $enum: enumName, $variant: name, $fields: fields };
  }
  function isVariant(v, enumName, name) {
    return v != null && v.$enum === enumName && v.$variant === name;
  }
  async function rpc(name, args) {
    const resp = await fetch("/__rpc/" + name, {
      method: "POST",
      headers: { "content-type": "application/json" },
      body: JSON.stringify(args),
    });
    return resp.json();
  }
  function println(v) { console.log(v); }
  function to_string(v) { return String(v); }
  function parse_int(s) { const n = parseInt(s, 10); return Number.isNaN(n) ? null : n; }
  function string_len(s) { return s.length; }
  function alert_(m) { window.alert(m); }
  function navigate(url) { window.location.assign(url); }
  function local_storage_get(k) { return window.localStorage.getItem(k); }
  function local_storage_set(k, v) { window.localStorage.setItem(k, v); }
  return { signal, computed, effect, element, setAttr, text, setText, append,
           fragment, on, mount, variant, isVariant, rpc, println, to_string,
           parse_int, string_len, alert: alert_, navigate, fetch: (u) => fetch(u),
           local_storage_get, local_storage_set };
})();
`

// serverRuntime backs the server script: the same value helpers plus the
// remote-invocation registry the client's __j.rpc calls into. Client-only
// API call sites on this side are stubs that delegate back to the client.
const serverRuntime = `const __j = (() => {
  const handlers = new Map();
  function expose(name, fn) { handlers.set(name, fn); }
  function dispatch(name, args) {
    const fn = handlers.get(name);
    if (!fn) throw new Error("unknown rpc: " + name);
    return fn(...args);
  }
  function rpc(name, args) { return Promise.resolve(dispatch(name, args)); }
  function signal(v) { return { value: v }; }
  function computed(fn) { return { get value() { return fn(); } }; }
  function effect(fn) { fn(); }
  function variant(enumName, name, ...fields) {
    return { $enum: enumName, $variant: name, $fields: fields };
  }
  function isVariant(v, enumName, name) {
    return v != null && v.$enum === enumName && v.$variant === name;
  }
  function println(v) { console.log(v); }
  function to_string(v) { return String(v); }
  function parse_int(s) { const n = parseInt(s, 10); return Number.isNaN(n) ? null : n; }
  function string_len(s) { return s.length; }
  function db_query(q) { return globalThis.__jounce_db ? globalThis.__jounce_db.query(q) : []; }
  function db_execute(q) { if (globalThis.__jounce_db) globalThis.__jounce_db.execute(q); }
  function read_file(p) { return globalThis.__jounce_fs.readFile(p); }
  function write_file(p, c) { return globalThis.__jounce_fs.writeFile(p, c); }
  function env_var(k) { return globalThis.process ? process.env[k] ?? null : null; }
  return { expose, dispatch, rpc, signal, computed, effect, variant, isVariant,
           println, to_string, parse_int, string_len,
           db_query, db_execute, read_file, write_file, env_var };
})();
`
