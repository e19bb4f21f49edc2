package sequence

// Page-side scripts. Each one is a single function evaluated with
// page.Eval and returns JSON.stringify of a small result object, so
// the Go side never holds live node references across re-renders.

// photoStateJS reports the attachment surfaces currently in the DOM.
// The remove button is the only trustworthy confirmation signal; the
// file input and the add-photo button are the two ways in.
const photoStateJS = `() => {
	const visible = (el) => {
		if (!el) return false;
		const r = el.getBoundingClientRect();
		return r.width > 0 && r.height > 0;
	};
	const removeBtn = document.querySelector('[aria-label="Hapus foto dari tawaran"]');
	const input = document.querySelector('input[type="file"][accept*="image"]')
		|| document.querySelector('input[type="file"]');
	let addBtn = null;
	for (const el of document.querySelectorAll('[role="button"], div[role="none"]')) {
		const text = (el.textContent || '').trim();
		if (text === 'Tambahkan Foto' || text === 'Tambahkan foto') { addBtn = el; break; }
	}
	return JSON.stringify({
		confirmed: !!removeBtn,
		hasInput: !!input,
		addVisible: visible(addBtn),
	});
}`

// clickAddPhotoJS opens the photo picker affordance so the hidden file
// input gets mounted. Synthetic events because the affordance is a div
// with a click handler, not a native button.
const clickAddPhotoJS = `() => {
	let target = null;
	for (const el of document.querySelectorAll('[role="button"], div[role="none"]')) {
		const text = (el.textContent || '').trim();
		if (text === 'Tambahkan Foto' || text === 'Tambahkan foto') { target = el; break; }
	}
	if (!target) return JSON.stringify({ clicked: false });
	for (const type of ['mousedown', 'mouseup', 'click']) {
		target.dispatchEvent(new MouseEvent(type, { bubbles: true, cancelable: true, view: window }));
	}
	return JSON.stringify({ clicked: true });
}`

// selectStateJS locates the select-like control for a label and reads
// its current display value. Controls here are React comboboxes
// rendered as labelled divs, never native <select> elements.
const selectStateJS = `(label) => {
	const visible = (el) => {
		if (!el) return false;
		const r = el.getBoundingClientRect();
		if (r.width === 0 || r.height === 0) return false;
		const s = window.getComputedStyle(el);
		return s.display !== 'none' && s.visibility !== 'hidden';
	};
	const norm = (s) => (s || '').replace(/ /g, ' ').replace(/\s+/g, ' ').trim();
	let control = null;
	for (const span of document.querySelectorAll('label span, div[role="button"] span')) {
		if (norm(span.textContent) !== label) continue;
		control = span.closest('label') || span.closest('div[role="button"]');
		if (control) break;
	}
	if (!control) {
		for (const el of document.querySelectorAll('[role="combobox"]')) {
			const lab = el.getAttribute('aria-label') || '';
			if (norm(lab) === label) { control = el; break; }
		}
	}
	if (!control) return JSON.stringify({ present: false });
	// Display value is the control text minus the label itself.
	let display = norm(control.textContent);
	if (display.startsWith(label)) display = norm(display.slice(label.length));
	const editable = !!control.querySelector('input:not([type="hidden"])');
	return JSON.stringify({
		present: true,
		visible: visible(control),
		display: display,
		editable: editable,
		expanded: control.getAttribute('aria-expanded') === 'true',
	});
}`

// openSelectJS dispatches the click sequence that expands the combobox
// for a label. The option list mounts asynchronously afterwards.
const openSelectJS = `(label) => {
	const norm = (s) => (s || '').replace(/ /g, ' ').replace(/\s+/g, ' ').trim();
	let control = null;
	for (const span of document.querySelectorAll('label span, div[role="button"] span')) {
		if (norm(span.textContent) !== label) continue;
		control = span.closest('label') || span.closest('div[role="button"]');
		if (control) break;
	}
	if (!control) {
		for (const el of document.querySelectorAll('[role="combobox"]')) {
			if (norm(el.getAttribute('aria-label')) === label) { control = el; break; }
		}
	}
	if (!control) return JSON.stringify({ opened: false });
	control.scrollIntoView({ block: 'center' });
	for (const type of ['mousedown', 'mouseup', 'click']) {
		control.dispatchEvent(new MouseEvent(type, { bubbles: true, cancelable: true, view: window }));
	}
	return JSON.stringify({ opened: true });
}`

// typeIntoSelectJS drives an editable combobox: native value setter,
// input event, then Enter keydown. Used when the control carries a
// text input instead of a fixed option list.
const typeIntoSelectJS = `({ label, value }) => {
	const norm = (s) => (s || '').replace(/ /g, ' ').replace(/\s+/g, ' ').trim();
	let control = null;
	for (const span of document.querySelectorAll('label span, div[role="button"] span')) {
		if (norm(span.textContent) !== label) continue;
		control = span.closest('label') || span.closest('div[role="button"]');
		if (control) break;
	}
	const input = control ? control.querySelector('input:not([type="hidden"])') : null;
	if (!input) return JSON.stringify({ typed: false });
	input.focus();
	const setter = Object.getOwnPropertyDescriptor(HTMLInputElement.prototype, 'value').set;
	setter.call(input, value);
	input.dispatchEvent(new Event('input', { bubbles: true }));
	for (const type of ['keydown', 'keyup']) {
		input.dispatchEvent(new KeyboardEvent(type, {
			bubbles: true, cancelable: true, key: 'Enter', code: 'Enter', keyCode: 13,
		}));
	}
	return JSON.stringify({ typed: true });
}`

// pickOptionJS clicks the listbox option matching value, exact text
// first and substring as the fallback.
const pickOptionJS = `(value) => {
	const norm = (s) => (s || '').replace(/ /g, ' ').replace(/\s+/g, ' ').trim();
	const options = Array.from(document.querySelectorAll('[role="option"]'));
	if (options.length === 0) return JSON.stringify({ picked: false, options: 0 });
	let target = options.find((o) => norm(o.textContent) === value)
		|| options.find((o) => norm(o.textContent).includes(value));
	if (!target) return JSON.stringify({ picked: false, options: options.length });
	target.scrollIntoView({ block: 'center' });
	for (const type of ['mousedown', 'mouseup', 'click']) {
		target.dispatchEvent(new MouseEvent(type, { bubbles: true, cancelable: true, view: window }));
	}
	return JSON.stringify({ picked: true, options: options.length });
}`

// saveDraftJS clicks the save-draft affordance. Aria labels first, the
// role=none text container as the last resort.
const saveDraftJS = `() => {
	const norm = (s) => (s || '').replace(/ /g, ' ').replace(/\s+/g, ' ').trim().toLowerCase();
	const want = 'simpan draf';
	const candidates = [];
	for (const el of document.querySelectorAll('[aria-label]')) {
		if (norm(el.getAttribute('aria-label')) === want) candidates.push(el);
	}
	for (const el of document.querySelectorAll('[role="button"]')) {
		if (norm(el.textContent) === want) candidates.push(el);
	}
	for (const el of document.querySelectorAll('div[role="none"]')) {
		if (norm(el.textContent) === want) candidates.push(el);
	}
	const visible = (el) => {
		const r = el.getBoundingClientRect();
		return r.width > 0 && r.height > 0;
	};
	const target = candidates.find(visible) || candidates[0];
	if (!target) return JSON.stringify({ clicked: false });
	target.scrollIntoView({ block: 'center' });
	for (const type of ['mousedown', 'mouseup', 'click']) {
		target.dispatchEvent(new MouseEvent(type, { bubbles: true, cancelable: true, view: window }));
	}
	return JSON.stringify({ clicked: true });
}`

// leavePromptJS probes for the destructive-navigation dialog and, when
// found, clicks the confirm button. Selector order matters: the dialog
// scope first so a page-level false positive never gets clicked.
// The host keeps dismissed modals mounted with display:none, so
// `dialog` reports only a visible prompt match, and only a visible,
// non-disabled candidate may receive the click.
const leavePromptJS = `() => {
	const norm = (s) => (s || '').replace(/ /g, ' ').replace(/\s+/g, ' ').trim();
	const visible = (el) => {
		const r = el.getBoundingClientRect();
		if (r.width === 0 || r.height === 0) return false;
		const s = window.getComputedStyle(el);
		return s.display !== 'none' && s.visibility !== 'hidden';
	};
	const usable = (el) => visible(el) && el.getAttribute('aria-disabled') !== 'true';
	const matches = (el) => {
		const label = norm(el.getAttribute('aria-label')).toLowerCase();
		const text = norm(el.textContent).toLowerCase();
		return label.includes('tinggalkan halaman') || text === 'tinggalkan halaman';
	};
	const scopes = [
		'div[role="dialog"] [role="button"]',
		'div[role="dialog"] div[aria-label]',
		'[aria-label="Tinggalkan Halaman"]',
		'[role="button"]',
	];
	let target = null;
	let promptVisible = false;
	for (const sel of scopes) {
		for (const el of document.querySelectorAll(sel)) {
			if (!matches(el)) continue;
			promptVisible = promptVisible || visible(el);
			if (usable(el)) { target = el; break; }
		}
		if (target) break;
	}
	if (!target) return JSON.stringify({ dialog: promptVisible, clicked: false });
	for (const type of ['mousedown', 'mouseup', 'click']) {
		target.dispatchEvent(new MouseEvent(type, { bubbles: true, cancelable: true, view: window }));
	}
	return JSON.stringify({ dialog: true, clicked: true });
}`
