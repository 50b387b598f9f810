package browser

import (
	"testing"

	"auctionpauser/internal/core/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubPublishCoalesces(t *testing.T) {
	h := newHub()
	changes, unsubscribe := h.subscribe(1)
	defer unsubscribe()

	h.publish()
	h.publish()
	h.publish()

	_, ok := <-changes
	require.True(t, ok)
	select {
	case <-changes:
		t.Fatal("expected notifications to coalesce")
	default:
	}
}

func TestHubUnsubscribe(t *testing.T) {
	h := newHub()
	changes, unsubscribe := h.subscribe(4)
	require.Equal(t, 1, h.size())

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, h.size())
	_, ok := <-changes
	assert.False(t, ok)

	h.publish()
}

func TestHubClose(t *testing.T) {
	h := newHub()
	first, _ := h.subscribe(1)
	h.close()

	_, ok := <-first
	assert.False(t, ok)

	late, unsubscribe := h.subscribe(1)
	_, ok = <-late
	assert.False(t, ok)
	unsubscribe()
}

func TestParseClick(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    model.ControlClick
		wantErr bool
	}{
		{
			name:    "trusted pause icon",
			payload: `{"text":"pause","pauseHint":false,"liveHint":false,"trusted":true}`,
			want:    model.ControlClick{Text: "pause", Trusted: true},
		},
		{
			name:    "hinted live button",
			payload: `{"text":"","liveHint":true,"trusted":true}`,
			want:    model.ControlClick{LiveHint: true, Trusted: true},
		},
		{
			name:    "synthetic click",
			payload: `{"text":"live","trusted":false}`,
			want:    model.ControlClick{Text: "live"},
		},
		{
			name:    "garbage",
			payload: `not json`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseClick(tt.payload)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildMonitorScript(t *testing.T) {
	script := buildMonitorScript("")
	assert.Contains(t, script, `const controls = ".draft__navbar__status";`)
	assert.Contains(t, script, "window."+changeBinding+"('')")
	assert.Contains(t, script, "window."+clickBinding+"(JSON.stringify")
	assert.NotContains(t, script, "%!")

	quoted := buildMonitorScript(`div[data-x="a'b"]`)
	assert.Contains(t, quoted, `const controls = "div[data-x=\"a'b\"]";`)
}

func TestBuildClickFirstScript(t *testing.T) {
	script, err := buildClickFirstScript([]string{`span[data-click-monitored="true"]`, "h6"})
	require.NoError(t, err)
	assert.Contains(t, script, `})(["span[data-click-monitored=\"true\"]","h6"])`)
}
