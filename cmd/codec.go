package main

import (
	"errors"
	"strconv"
	"strings"

	"github.com/1F47E/nato-grid/pkg/coordparse"
	"github.com/1F47E/nato-grid/pkg/gridcode"
	"github.com/1F47E/nato-grid/pkg/models"
	"github.com/1F47E/nato-grid/pkg/share"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fromURL bool

var encodeCmd = &cobra.Command{
	Use:   "encode <lat> <lon> | encode <coordinates>",
	Short: "Encode a coordinate into a grid code",
	Long: `Encode a coordinate into a grid code. The coordinate is either two numbers
or any text the parse command accepts, e.g. "52,26755° N, 22,26155° E".`,
	Example: `  natogrid encode 52.1677 22.2903
  natogrid encode "52.1677 N, 22.2903 E"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEncode,
}

var decodeCmd = &cobra.Command{
	Use:     "decode <code>",
	Short:   "Decode a grid code into the south-west corner of its cell",
	Example: "  natogrid decode November Victor Sierra Oscar\n  natogrid decode NVSOXLGAMVLD",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runDecode,
}

var parseCmd = &cobra.Command{
	Use:   "parse <coordinates>",
	Short: "Read loosely written decimal-degree coordinates",
	Long:  "Read loosely written decimal-degree coordinates. Accepted layouts:\n  " + strings.Join(coordparse.Formats, "\n  "),
	Args:  cobra.MinimumNArgs(1),
	RunE:  runParse,
}

var shortCmd = &cobra.Command{
	Use:   "short <code>",
	Short: "Print the first letter of every word of a code",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		short := gridcode.ShortCode(strings.Join(args, " "))
		return out.emit(map[string]string{"short": short}, func() {
			out.code("short", short)
		})
	},
}

var shareCmd = &cobra.Command{
	Use:   "share <code|coordinates>",
	Short: "Build a share link, or read the code out of one with --from-url",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runShare,
}

var linksCmd = &cobra.Command{
	Use:   "links <code|coordinates>",
	Short: "Print Apple Maps, Google Maps and Waze links for a location",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, loc, err := locate(args)
		if err != nil {
			return err
		}
		links := share.Links(loc)
		return out.emit(links, func() {
			out.field("apple", links.Apple)
			out.field("google", links.Google)
			out.field("waze", links.Waze)
		})
	},
}

func init() {
	shareCmd.Flags().BoolVar(&fromURL, "from-url", false, "Treat the argument as a share link and decode it")
}

type codeResult struct {
	Code      string          `json:"code"`
	Short     string          `json:"short"`
	Location  models.Location `json:"location"`
	Formatted string          `json:"formatted"`
	ShareURL  string          `json:"share_url,omitempty"`
	Links     *share.MapLinks `json:"links,omitempty"`
}

func newCodeResult(code gridcode.Code, loc models.Location) codeResult {
	res := codeResult{
		Code:      code.String(),
		Short:     code.Short(),
		Location:  loc,
		Formatted: coordparse.Format(loc),
	}
	if link, err := share.ShareURL(cfg.Server.BaseURL, code); err == nil {
		res.ShareURL = link
	} else {
		log.Debug("share link unavailable", zap.Error(err))
	}
	return res
}

func printCodeResult(title string, res codeResult) func() {
	return func() {
		out.title(title)
		out.code("code", res.Code)
		out.code("short", res.Short)
		out.field("location", res.Formatted)
		if res.ShareURL != "" {
			out.field("share", res.ShareURL)
		}
		if res.Links != nil {
			out.field("apple", res.Links.Apple)
			out.field("google", res.Links.Google)
			out.field("waze", res.Links.Waze)
		}
	}
}

// coordinates reads either two bare numbers or free text.
func coordinates(args []string) (models.Location, error) {
	if len(args) == 2 {
		lat, errLat := strconv.ParseFloat(args[0], 64)
		lon, errLon := strconv.ParseFloat(args[1], 64)
		if errLat == nil && errLon == nil {
			return models.Location{Lat: lat, Lon: lon}, nil
		}
	}
	return coordparse.Parse(strings.Join(args, " "))
}

// locate accepts coordinates or a code and returns the cell it falls in.
func locate(args []string) (gridcode.Code, models.Location, error) {
	if loc, err := coordinates(args); err == nil {
		code, err := codec.Encode(loc.Lat, loc.Lon)
		return code, loc, err
	}

	code, loc, err := codec.Resolve(strings.Join(args, " "))
	if errors.Is(err, gridcode.ErrInvalidCode) {
		return nil, models.Location{}, errors.New("input is neither a coordinate nor a grid code: " + err.Error())
	}
	return code, loc, err
}

func runEncode(cmd *cobra.Command, args []string) error {
	loc, err := coordinates(args)
	if err != nil {
		return err
	}
	log.Debug("encoding", zap.Float64("lat", loc.Lat), zap.Float64("lon", loc.Lon))

	code, err := codec.Encode(loc.Lat, loc.Lon)
	if err != nil {
		return err
	}
	res := newCodeResult(code, loc)
	return out.emit(res, printCodeResult("Encoded", res))
}

func runDecode(cmd *cobra.Command, args []string) error {
	code, loc, err := codec.Resolve(strings.Join(args, " "))
	if err != nil {
		return err
	}
	res := newCodeResult(code, loc)
	links := share.Links(loc)
	res.Links = &links
	return out.emit(res, printCodeResult("Decoded", res))
}

func runParse(cmd *cobra.Command, args []string) error {
	loc, err := coordparse.Parse(strings.Join(args, " "))
	if err != nil {
		return err
	}

	res := codeResult{Location: loc, Formatted: coordparse.Format(loc)}
	code, err := codec.Encode(loc.Lat, loc.Lon)
	if err == nil {
		res = newCodeResult(code, loc)
	} else {
		log.Debug("parsed location cannot be encoded", zap.Error(err))
	}

	return out.emit(res, func() {
		out.title("Parsed")
		out.field("lat", loc.Lat)
		out.field("lon", loc.Lon)
		out.field("location", res.Formatted)
		if res.Code != "" {
			out.code("code", res.Code)
			out.code("short", res.Short)
		} else {
			out.note("  outside the grid, no code")
		}
	})
}

func runShare(cmd *cobra.Command, args []string) error {
	input := args
	if fromURL {
		raw, err := share.CodeFromURL(args[0])
		if err != nil {
			return err
		}
		input = []string{raw}
	}

	code, loc, err := locate(input)
	if err != nil {
		return err
	}
	res := newCodeResult(code, loc)
	if res.ShareURL == "" {
		return errors.New("server.base_url is not a valid absolute url")
	}
	return out.emit(res, printCodeResult("Share", res))
}
