package dom

// The scripts below are the fixed contract between the scanner and the
// browser engine. They are versioned as a catalog here and must not be
// assembled ad hoc at call sites; any value interpolation goes through
// escapeJS.

// scriptScanLoginFields returns {username, password}: the first non-empty
// value of a text/email input and of a password input, in document order.
const scriptScanLoginFields = `
(function() {
    var inputs = document.getElementsByTagName('input');
    var username = '';
    var password = '';
    for (var i = 0; i < inputs.length; i++) {
        var t = inputs[i].type.toLowerCase();
        if ((t === 'text' || t === 'email') && !username) {
            username = inputs[i].value;
        } else if (t === 'password' && !password) {
            password = inputs[i].value;
        }
    }
    return {username: username, password: password};
})();
`

// scriptHasPasswordField returns whether the page has a password input.
const scriptHasPasswordField = `
(function() {
    var inputs = document.getElementsByTagName('input');
    for (var i = 0; i < inputs.length; i++) {
        if (inputs[i].type.toLowerCase() === 'password') {
            return true;
        }
    }
    return false;
})();
`

// scriptFillLoginFields writes the two placeholders into the first
// text/email input and the first password input. Both values must already
// be escaped for a double-quoted JS string literal.
const scriptFillLoginFields = `
(function() {
    var inputs = document.getElementsByTagName('input');
    var userDone = false;
    var passDone = false;
    for (var i = 0; i < inputs.length; i++) {
        var t = inputs[i].type.toLowerCase();
        if (!userDone && (t === 'text' || t === 'email')) {
            inputs[i].value = "%s";
            userDone = true;
        } else if (!passDone && t === 'password') {
            inputs[i].value = "%s";
            passDone = true;
        }
    }
})();
`

// scriptScanVideoSources returns one URL per <video> element, in document
// order. Per element it prefers the <source> with the highest quality hint:
// a label/data-res attribute, else a "<digits>p" match in the URL. The digit
// match is a heuristic and can pick up unrelated numbers in a path; that is
// a known limitation of the scoring, kept as designed. Elements without any
// scored source fall back to their current or configured src; elements with
// nothing playable are omitted.
const scriptScanVideoSources = `
(function() {
    var videos = document.getElementsByTagName('video');
    var chosenSources = [];

    for (var i = 0; i < videos.length; i++) {
        var bestSrc = null;
        var bestQuality = 0;

        var sourceTags = videos[i].getElementsByTagName('source');
        for (var j = 0; j < sourceTags.length; j++) {
            var src = sourceTags[j].src;

            var labelAttr = sourceTags[j].getAttribute('label') ||
                            sourceTags[j].getAttribute('data-res') || "";

            var foundQuality = 0;
            var matchLabel = labelAttr.match(/(\d+)p/);
            if (matchLabel) {
                foundQuality = parseInt(matchLabel[1], 10);
            } else {
                var matchURL = src.match(/(\d+)p/);
                if (matchURL) {
                    foundQuality = parseInt(matchURL[1], 10);
                }
            }

            if (foundQuality > bestQuality) {
                bestQuality = foundQuality;
                bestSrc = src;
            }
        }

        if (bestSrc) {
            chosenSources.push(bestSrc);
        } else {
            var fallback = videos[i].currentSrc || videos[i].src;
            if (fallback) {
                chosenSources.push(fallback);
            }
        }
    }

    return chosenSources;
})();
`
