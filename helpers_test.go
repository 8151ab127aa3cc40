package folio

import (
	"bytes"
	"net/http"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const contentJSON = `{
	"title": "Antoni Tomaszewski",
	"subtitle": "Photography",
	"navigation": ["About", "Portfolio", "Series", "Blog", "Contact"],
	"backgrounds": ["bg1.jpg", "bg2.jpg", "bg3.jpg"],
	"sections": {
		"about": {"title": "About me", "content": "<p>Hi <script>alert(1)</script>there</p>"},
		"portfolio": {"title": "Portfolio", "content": "<p>Selected work</p>"},
		"series": {"title": "Series", "content": "<p>Longer stories</p>"},
		"blog": {"title": "Blog", "content": ""},
		"contact": {"title": "Contact", "content": "<p>mail me</p>"}
	},
	"portfolio_images": [
		{"src": "p1.jpg", "caption": "One"},
		{"src": "p2.jpg", "thumbnail": "p2_t.jpg", "caption": "Two"},
		{"src": "p3.jpg", "caption": "Three"}
	],
	"series": [
		{"title": "Winter", "thumbnail": "w.jpg", "images": [
			{"src": "w1.jpg", "caption": "w1"},
			{"src": "w2.jpg", "caption": "w2"}
		]},
		{"title": "Sea", "thumbnail": "s.jpg", "images": [
			{"src": "s1.jpg", "caption": "s1"},
			{"src": "s2.jpg", "caption": "s2"},
			{"src": "s3.jpg", "caption": "s3"}
		]}
	],
	"blog": [
		{"slug": "hello-world", "title": "Hello World", "date": "2024-03-01"},
		{"slug": "missing", "title": "Missing", "date": "2024-04-01"}
	]
}`

const helloWorldMD = `---
title: Hello World
author: Antoni
date: "2024-03-01"
---

Hello **there**.

![cat](cat.jpg)

<script>alert(1)</script>
`

func testTheme() fstest.MapFS {
	return fstest.MapFS{
		"content.json":        {Data: []byte(contentJSON)},
		"blog/hello-world.md": {Data: []byte(helloWorldMD)},
		"images/p1.jpg":       {Data: []byte("jpeg")},
		"images/bg1.jpg":      {Data: []byte("jpeg")},
		"style.css":           {Data: []byte("body{}")},
		".git/config":         {Data: []byte("[core]")},
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Theme = "antoni"
	return cfg
}

func newTestRenderer(t *testing.T, cfg Config, fs http.FileSystem) *Renderer {
	t.Helper()
	r, err := NewRenderer(cfg, fs, nil)
	require.NoError(t, err)
	return r
}

func parseHTML(t *testing.T, body []byte) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	require.NoError(t, err)
	return doc
}

func mustDescriptor(t *testing.T, js string) *Descriptor {
	t.Helper()
	fs := http.FS(fstest.MapFS{"content.json": {Data: []byte(js)}})
	d, err := LoadDescriptor(fs, DescriptorPath)
	require.NoError(t, err)
	return d
}

// recordingFS remembers every name opened through it.
type recordingFS struct {
	http.FileSystem
	mu     sync.Mutex
	opened []string
}

func (r *recordingFS) Open(name string) (http.File, error) {
	r.mu.Lock()
	r.opened = append(r.opened, name)
	r.mu.Unlock()
	return r.FileSystem.Open(name)
}
