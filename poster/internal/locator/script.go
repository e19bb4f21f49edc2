package locator

// containerSelector matches the field containers the host renders:
// the labelled form-group div plus the combobox variants.
const containerSelector = `div.xjbqb8w.x1iyjqo2.x193iq5w.xeuugli.x1n2onr6, label[role="combobox"], div[role="combobox"]`

// displaySpanSelector matches the read-only value span inside a select
// field's wrapper.
const displaySpanSelector = `div.xh8yej3[tabindex="-1"] span.x6ikm8r.x10wlt62.xlyipyv.xuxw1ft`

// pageReadyJS reports whether any of the expected field labels is
// rendered anywhere on the page. No label at all means the form has not
// rendered yet — a wait condition, not an error.
const pageReadyJS = `(labels) => {
	const spans = Array.from(document.querySelectorAll('span'));
	return labels.some((label) =>
		spans.some((s) => (s.textContent || '').trim() === label));
}`

// resolveJS tries each (kind, value) locator candidate in order and
// returns the first usable control as JSON:
//
//	{found, labelPresent, xpath, kind, visible, strategy}
//
// kind is one of input | textarea | span. Within each strategy a
// visible match is preferred over a hidden one, document order breaking
// ties. labelPresent distinguishes "field absent for this variant"
// (label nowhere on the page) from "label found but no usable control".
const resolveJS = `({ label, locators }) => {
	const isVisible = (el) => {
		if (!el) return false;
		const r = el.getBoundingClientRect();
		const s = window.getComputedStyle(el);
		return r.width > 0 && r.height > 0 && s.visibility !== 'hidden' && s.display !== 'none';
	};

	const normalize = (v) => {
		if (v == null) return '';
		if (typeof v === 'object' && typeof v.baseVal === 'string') v = v.baseVal;
		return String(v).replace(/\s+/g, ' ').trim();
	};

	const xpathOf = (el) => {
		const parts = [];
		let node = el;
		while (node && node.nodeType === 1) {
			let idx = 0;
			let sibling = node.previousElementSibling;
			while (sibling) {
				if (sibling.tagName === node.tagName) idx++;
				sibling = sibling.previousElementSibling;
			}
			const t = node.tagName.toLowerCase();
			parts.unshift(idx > 0 ? t + '[' + (idx + 1) + ']' : t);
			node = node.parentElement;
		}
		return '/' + parts.join('/');
	};

	// A usable control inside el (or el itself): text input, textarea,
	// or the wrapped display span of a select field.
	const controlOf = (el) => {
		if (!el) return null;
		const tag = (el.tagName || '').toLowerCase();
		if (tag === 'input') return { el, kind: 'input' };
		if (tag === 'textarea') return { el, kind: 'textarea' };

		const inputs = Array.from(el.querySelectorAll('input[type="text"], input[role="combobox"]'));
		const input = inputs.find(isVisible) || inputs[0];
		if (input) return { el: input, kind: 'input' };

		const ta = el.querySelector('textarea');
		if (ta) return { el: ta, kind: 'textarea' };

		const span = el.querySelector('` + displaySpanSelector + `');
		if (span) return { el: span, kind: 'span' };

		// A bare wrapper div passed by id.
		if (normalize(el.className) === 'xh8yej3') {
			const inner = el.querySelector('span.x6ikm8r.x10wlt62.xlyipyv.xuxw1ft');
			if (inner) return { el: inner, kind: 'span' };
		}
		return null;
	};

	const byVisibility = (els) => [
		...els.filter(isVisible),
		...els.filter((el) => !isVisible(el)),
	];

	const containers = Array.from(document.querySelectorAll('` + containerSelector + `'));
	const labelled = containers.filter((c) =>
		Array.from(c.querySelectorAll('span'))
			.some((s) => (s.textContent || '').trim() === label));
	const labelPresent = labelled.length > 0;

	const pick = (candidates, strategy) => {
		for (const el of byVisibility(candidates)) {
			const ctl = controlOf(el);
			if (!ctl) continue;
			return {
				found: true,
				labelPresent,
				xpath: xpathOf(ctl.el),
				kind: ctl.kind,
				visible: isVisible(ctl.el),
				strategy,
			};
		}
		return null;
	};

	for (const loc of locators) {
		let result = null;
		switch (loc.kind) {
		case 'id': {
			const el = document.getElementById(loc.value);
			if (el) result = pick([el], 'id');
			break;
		}
		case 'labeled': {
			result = pick(labelled, 'labeled');
			break;
		}
		case 'signature': {
			const needle = normalize(loc.value);
			const divs = Array.from(document.querySelectorAll('div'))
				.filter((d) => normalize(d.className) === needle)
				.filter((d) => {
					const span = d.querySelector('span.x6ikm8r.x10wlt62.xlyipyv.xuxw1ft');
					if (!span) return false;
					return (span.textContent || '').replace(/ /g, '').trim() === '';
				});
			result = pick(divs, 'signature');
			break;
		}
		}
		if (result) return JSON.stringify(result);
	}

	return JSON.stringify({ found: false, labelPresent });
}`
