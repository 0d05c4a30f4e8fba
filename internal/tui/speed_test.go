package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dm/fast-go/internal/model"
)

func verboseSnapshot() model.Snapshot {
	return model.Snapshot{
		DownloadSpeed: 240, DownloadUnit: "Mbps",
		UploadSpeed: 38, UploadUnit: "Mbps",
		Latency: 9, LatencyUnit: "ms",
		Bufferbloat: 41, BufferbloatUnit: "ms",
		Client:          &model.ClientInfo{Location: "Berlin, DE", IP: "203.0.113.7", ISP: "Mock ISP"},
		ServerLocations: []string{"Frankfurt, DE", "Amsterdam, NL"},
		IsDone:          true, IsLatencyDone: true, IsBufferbloatDone: true,
	}
}

func TestPlainText_Scenario(t *testing.T) {
	got := PlainText(uploadDone(), Options{Upload: true})
	assert.Equal(t, "17 Mbps\n4.4 Mbps\n", got)
}

func TestPlainText_LineCounts(t *testing.T) {
	tests := []struct {
		name  string
		opts  Options
		lines int
	}{
		{"download only", Options{}, 1},
		{"with upload", Options{Upload: true}, 2},
		{"verbose", Options{Upload: true, Verbose: true}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlainText(verboseSnapshot(), tt.opts)
			assert.NotContains(t, got, "\x1b")
			assert.True(t, strings.HasSuffix(got, "\n"))
			assert.False(t, strings.HasSuffix(got, "\n\n"))
			assert.Len(t, strings.Split(strings.TrimSuffix(got, "\n"), "\n"), tt.lines)
		})
	}
}

func TestPlainText_Verbose(t *testing.T) {
	got := PlainText(verboseSnapshot(), Options{Upload: true, Verbose: true})
	want := "240 Mbps\n" +
		"38 Mbps\n" +
		"    Latency:  9ms (unloaded)  41ms (loaded)\n" +
		"     Client:  Berlin, DE 203.0.113.7 Mock ISP\n" +
		"    Servers:  Frankfurt, DE | Amsterdam, NL\n"
	assert.Equal(t, want, got)
}

func TestPlainText_MissingFigures(t *testing.T) {
	s := model.Snapshot{DownloadSpeed: 3.2, DownloadUnit: "Mbps"}
	got := PlainText(s, Options{Upload: true, Verbose: true})

	assert.Contains(t, got, "3.2 Mbps\n- Mbps\n")
	assert.Contains(t, got, "Latency:  -ms (unloaded)  -ms (loaded)")
	assert.Contains(t, got, "Client:  -")
	assert.Contains(t, got, "Servers:  -")
}

func TestSpeedText(t *testing.T) {
	tests := []struct {
		name string
		s    model.Snapshot
		opts Options
		want string
	}{
		{"download only", downloading(), Options{}, "17 Mbps ↓"},
		{"upload pending", downloading(), Options{Upload: true}, "17 Mbps ↓ / - Mbps ↑"},
		{"both", uploadDone(), Options{Upload: true}, "17 Mbps ↓ / 4.4 Mbps ↑"},
		{"upload hidden", uploadDone(), Options{}, "17 Mbps ↓"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, speedText(tt.s, tt.opts, false))
			assert.Equal(t, tt.want, stripANSI(speedText(tt.s, tt.opts, true)))
		})
	}
}

func TestLiveView(t *testing.T) {
	assert.Equal(t, "\n\n  *\n\n", liveView(model.Snapshot{}, Options{}, "*"))
	assert.Equal(t, "\n\n  * 17 Mbps ↓\n\n", stripANSI(liveView(downloading(), Options{}, "*")))

	verbose := stripANSI(liveView(downloading(), Options{Upload: true, Verbose: true}, "*"))
	assert.Contains(t, verbose, "Latency:  -ms (unloaded)  -ms (loaded)")
	assert.NotContains(t, verbose, "Client:", "metadata is shown only once the run is done")
}

func TestFinalView_Verbose(t *testing.T) {
	got := stripANSI(finalView(verboseSnapshot(), Options{Upload: true, Verbose: true}))

	assert.True(t, strings.HasPrefix(got, "\n\n    240 Mbps ↓ / 38 Mbps ↑\n\n"))
	assert.Contains(t, got, "    Latency:  9ms (unloaded)  41ms (loaded)\n")
	assert.Contains(t, got, "     Client:  Berlin, DE 203.0.113.7 Mock ISP\n")
	assert.True(t, strings.HasSuffix(got, "Servers:  Frankfurt, DE | Amsterdam, NL\n"))
}

func TestVerboseText_PartialClient(t *testing.T) {
	s := model.Snapshot{Client: &model.ClientInfo{IP: "198.51.100.1"}}
	assert.Equal(t, "     Client:  198.51.100.1\n    Servers:  -", verboseText(s))
}
