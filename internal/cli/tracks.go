package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tessro/bard/internal/catalog"
	"github.com/tessro/bard/internal/core"
)

var tracksTag string

var tracksCmd = &cobra.Command{
	Use:   "tracks",
	Short: "List ambient tracks",
	Long:  `Lists the tracks in the catalog and whether their media files exist.`,
	Args:  cobra.NoArgs,
	RunE:  runTracks,
}

var cuesCmd = &cobra.Command{
	Use:   "cues",
	Short: "List sound cues",
	Long:  `Lists the sound cues and the battle-music pool in the catalog.`,
	Args:  cobra.NoArgs,
	RunE:  runCues,
}

func init() {
	tracksCmd.Flags().StringVar(&tracksTag, "tag", "", "Only show tracks with this tag")
	rootCmd.AddCommand(tracksCmd)
	rootCmd.AddCommand(cuesCmd)
}

type trackInfo struct {
	core.Track
	Present bool   `json:"present"`
	Size    uint64 `json:"size,omitempty"`
}

type cueInfo struct {
	core.SoundCue
	Present bool   `json:"present"`
	Size    uint64 `json:"size,omitempty"`
}

func runTracks(cmd *cobra.Command, args []string) error {
	c, err := loadCatalog()
	if err != nil {
		return err
	}
	media := checkMedia(c)

	var tracks []trackInfo
	for _, t := range c.Tracks {
		if tracksTag != "" && t.Tag != tracksTag {
			continue
		}
		st := media[t.Source]
		tracks = append(tracks, trackInfo{Track: t, Present: st.Present(), Size: uint64(st.Size)})
	}

	if JSONOutput() {
		if tracks == nil {
			tracks = []trackInfo{}
		}
		return json.NewEncoder(os.Stdout).Encode(tracks)
	}
	if len(tracks) == 0 {
		fmt.Println("No tracks found")
		return nil
	}
	printTracks(os.Stdout, tracks)
	return nil
}

func printTracks(w io.Writer, tracks []trackInfo) {
	t := NewTableWriter(w, "", "ID", "TITLE", "TAG", "LENGTH", "SIZE")
	for _, tr := range tracks {
		t.Row(StatusIcon(tr.Present), tr.ID, TruncateString(tr.Title, 40), tr.Tag, tr.Duration, sizeOf(tr.Present, tr.Size))
	}
	t.Flush()

	if Verbose() {
		fmt.Fprintln(w)
		for _, tr := range tracks {
			fmt.Fprintf(w, "  %s: %s\n", tr.ID, tr.Source)
		}
	}
}

func runCues(cmd *cobra.Command, args []string) error {
	c, err := loadCatalog()
	if err != nil {
		return err
	}
	media := checkMedia(c)

	cues := make([]cueInfo, 0, len(c.Cues))
	for _, cue := range c.Cues {
		st := media[cue.Source]
		cues = append(cues, cueInfo{SoundCue: cue, Present: st.Present(), Size: uint64(st.Size)})
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"cues":   cues,
			"battle": c.Battle,
		})
	}
	printCues(os.Stdout, cues, c.Battle, media)
	return nil
}

func printCues(w io.Writer, cues []cueInfo, battle catalog.Battle, media map[string]catalog.MediaStatus) {
	t := NewTableWriter(w, "", "ID", "LABEL", "VOLUME", "REPEAT", "DELAY", "SIZE")
	for _, c := range cues {
		delay := "-"
		if c.Delay > 0 {
			delay = c.Delay.String()
		}
		t.Row(StatusIcon(c.Present), c.ID, c.Label,
			fmt.Sprintf("%d%%", int(c.Volume*100+0.5)),
			fmt.Sprintf("x%d", c.Repeat), delay, sizeOf(c.Present, c.Size))
	}
	t.Flush()

	fmt.Fprintln(w)
	fmt.Fprintln(w, "[BATTLE MUSIC]")
	steps := append([]core.Step{battle.Fanfare}, battle.Combat...)
	for i, s := range steps {
		prefix := "  then one of:"
		if i == 0 {
			prefix = "  fanfare:"
		}
		if i > 1 {
			prefix = "           "
		}
		st := media[s.Source]
		fmt.Fprintf(w, "%-14s %s %s (%s)\n", prefix, StatusIcon(st.Present()), s.Title, filepath.Base(s.Source))
	}
}

// checkMedia stats catalog media, reporting missing files on stderr.
func checkMedia(c *catalog.Catalog) map[string]catalog.MediaStatus {
	result := c.CheckMedia()
	if result.HasErrors() && !JSONOutput() {
		fmt.Fprintf(os.Stderr, "Warning: %s\n\n", strings.TrimSpace(result.ErrorSummary()))
	}
	return result.Data
}

func sizeOf(present bool, size uint64) string {
	if !present {
		return "missing"
	}
	return humanize.Bytes(size)
}
