package tui

import (
	"fmt"
	"strings"

	"github.com/carekiosk/kiosk/color"
	"github.com/carekiosk/kiosk/icon"
	"github.com/carekiosk/kiosk/style"
	"github.com/carekiosk/kiosk/util"
	"github.com/carekiosk/kiosk/video"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
	"github.com/samber/lo"
)

// clockWidth is reserved next to the progress bar for "h:mm:ss / h:mm:ss".
const clockWidth = 20

var paddingStyle = lipgloss.NewStyle().Padding(1, 2)

func (b *statefulBubble) View() string {
	var output string

	switch b.state {
	case loadingState:
		output = b.viewLoading()
	case errorState:
		output = b.viewError()
	case playbackState, finishedState:
		output = b.viewPlayback()
	default:
		output = "Unknown state"
	}

	return b.notifier.View(output)
}

func (b *statefulBubble) viewLoading() string {
	return b.renderLines(append(b.header(),
		"",
		b.spinnerC.View()+" Loading video",
	))
}

func (b *statefulBubble) viewError() string {
	reason := "The video could not be played."
	if b.video.Err != nil {
		reason = b.video.Err.Error()
	}
	return b.renderLines(append(b.header(),
		"",
		style.ErrorTitle(icon.Get(icon.Fail)+" Playback failed"),
		"",
		wrap.String(reason, b.textWidth()),
		"",
		b.helpC.View(b.keymap),
	))
}

func (b *statefulBubble) viewPlayback() string {
	lines := b.header()
	if b.finished {
		lines = append(lines, "", style.Fg(color.Green)(icon.Get(icon.Replay)+" Finished"))
	}

	lines = append(lines, "", b.viewCaption(), "", b.viewProgress())

	if controls := b.viewControls(); controls != "" {
		lines = append(lines, "", controls)
	}

	return b.renderLines(lines)
}

// header is the title line with the poster link while the poster shows. Fullscreen strips it.
func (b *statefulBubble) header() []string {
	if b.chromeHidden {
		return nil
	}
	desc := b.player.Descriptor()
	lines := []string{style.Title(desc.Name)}
	if poster, ok := desc.PosterURL.Get(); ok && b.video.PosterVisible {
		lines = append(lines, style.Faint(icon.Get(icon.Link)+" "+poster))
	}
	if previous, ok := b.player.Previous().Get(); ok && previous.Progress > 0 && b.video.CurrentTime == 0 {
		lines = append(lines, style.Faint(fmt.Sprintf("Watched %d%% before", previous.Progress)))
	}
	return lines
}

func (b *statefulBubble) viewCaption() string {
	if !b.video.Captions || b.caption == "" {
		return ""
	}
	return style.Caption.Render(wordwrap.String(b.caption, max(b.textWidth()-2, 1)))
}

func (b *statefulBubble) viewProgress() string {
	position, duration := b.position, b.duration
	if b.scrubbing {
		position = b.scrubTo
	}
	if b.finished {
		position = duration
	}

	var percent float64
	if duration > 0 {
		percent = float64(position) / float64(duration)
	}

	clock := fmt.Sprintf(" %s / %s", util.FormatClock(position), util.FormatClock(duration))
	if b.watched {
		clock += " " + style.Fg(color.Green)(icon.Get(icon.Watched))
	}
	return b.progressC.ViewAs(percent) + clock
}

// viewControls renders the controls bar. Hidden controls render nothing; fading ones render faint.
func (b *statefulBubble) viewControls() string {
	if b.video.Controls == video.Hidden {
		return ""
	}

	playing := icon.Get(icon.Play)
	if b.video.Play {
		playing = icon.Get(icon.Pause)
	}

	captions := icon.Get(icon.Captions)
	switch {
	case !b.video.HasCaptions:
		captions = ""
	case b.video.Captions:
		captions = style.Fg(color.Orange)(captions)
	default:
		captions = style.Faint(captions)
	}

	fullscreen := icon.Get(icon.Fullscreen)
	if b.video.Fullscreen {
		fullscreen = style.Fg(color.Orange)(fullscreen)
	}

	bar := strings.Join(lo.Compact([]string{playing, captions, fullscreen}), "  ")
	if b.video.Controls != video.Visible {
		return style.Faint(bar)
	}
	return bar + "\n\n" + b.helpC.View(b.keymap)
}

func (b *statefulBubble) textWidth() int {
	x, _ := paddingStyle.GetFrameSize()
	if w := b.width - x; w > 0 {
		return w
	}
	return 80
}

func (b *statefulBubble) renderLines(lines []string) string {
	return paddingStyle.Render(strings.Join(lines, "\n"))
}
