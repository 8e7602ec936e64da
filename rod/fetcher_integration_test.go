//go:build integration

package rod_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/docseek/goquery"
	"github.com/fwojciec/docseek/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Integration_ExposesScriptInsertedLinks(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>SoftoAI</title></head>
<body>
<div id="menu"></div>
<site-footer></site-footer>
<script>
document.getElementById('menu').innerHTML = '<a href="/kontakt">Kontakt</a>';
customElements.define('site-footer', class extends HTMLElement {
  constructor() {
    super();
    this.attachShadow({mode: 'open'}).innerHTML = '<a href="/regulamin">Regulamin</a>';
  }
});
</script>
</body>
</html>`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fetcher, err := rod.NewFetcher()
	require.NoError(t, err)
	defer fetcher.Close()

	html, err := fetcher.Fetch(ctx, srv.URL+"/")
	require.NoError(t, err)

	links, err := goquery.NewLinkExtractor().ExtractLinks(html, srv.URL+"/")
	require.NoError(t, err)

	var urls []string
	for _, l := range links {
		urls = append(urls, l.URL)
	}
	assert.Contains(t, urls, srv.URL+"/kontakt")
	assert.Contains(t, urls, srv.URL+"/regulamin")
}
