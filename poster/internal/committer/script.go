package committer

// commitJS writes a value into the control at xpath and returns the
// read-back as JSON {ok, value}.
//
// Inputs and textareas are written through the prototype value setter
// so the write lands under any shadowing the host framework installed
// on the element instance, then input/change/blur are synthesized so
// the host's model observes the new value. Setting only the attribute
// or visible text does not survive the host's next re-render.
//
// Display spans (select-style fields) are committed by replacing the
// span text and normalising the wrapper the host expects: class
// "xh8yej3", tabindex -1. A signature-matched div that has no wrapper
// yet is relocated into a freshly created one — the shape one observed
// host render produces around a chosen select value.
const commitJS = `({ xpath, kind, value, wrapperId }) => {
	const node = document.evaluate(xpath, document, null,
		XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
	if (!node) return JSON.stringify({ ok: false, value: '' });

	const readBack = (el) => {
		if (typeof el.value === 'string') return el.value;
		const attr = el.getAttribute ? el.getAttribute('value') : '';
		if (attr) return attr;
		return (el.textContent || '').replace(/ /g, '').trim();
	};

	if (kind === 'input' || kind === 'textarea') {
		const proto = kind === 'textarea'
			? HTMLTextAreaElement.prototype
			: HTMLInputElement.prototype;
		const setter = Object.getOwnPropertyDescriptor(proto, 'value')?.set;
		if (setter) setter.call(node, value);
		else node.value = value;

		if (kind === 'textarea') node.textContent = value;
		node.setAttribute('value', value);

		node.dispatchEvent(new Event('input', { bubbles: true }));
		node.dispatchEvent(new Event('change', { bubbles: true }));
		node.dispatchEvent(new Event('blur', { bubbles: true }));

		return JSON.stringify({ ok: true, value: readBack(node) });
	}

	// Display span commit.
	node.textContent = value;

	let wrapper = node.closest('div.xh8yej3');
	if (wrapper) {
		wrapper.className = 'xh8yej3';
		if (wrapperId) wrapper.id = wrapperId;
		wrapper.setAttribute('tabindex', '-1');
	} else {
		// Signature div without a wrapper: relocate it into one.
		const host = node.closest('div');
		if (host && host !== document.documentElement) {
			wrapper = document.createElement('div');
			wrapper.className = 'xh8yej3';
			if (wrapperId) wrapper.id = wrapperId;
			wrapper.setAttribute('tabindex', '-1');
			host.replaceWith(wrapper);
			wrapper.appendChild(host);
		}
	}

	return JSON.stringify({ ok: true, value: readBack(node) });
}`

// readJS returns the current value at xpath without writing.
const readJS = `(xpath) => {
	const node = document.evaluate(xpath, document, null,
		XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
	if (!node) return JSON.stringify({ ok: false, value: '' });
	let value;
	if (typeof node.value === 'string') {
		value = node.value;
	} else {
		value = (node.getAttribute && node.getAttribute('value')) ||
			(node.textContent || '');
	}
	return JSON.stringify({
		ok: true,
		value: String(value).replace(/ /g, ' ').trim(),
	});
}`
