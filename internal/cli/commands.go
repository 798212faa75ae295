package cli

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/anas-shakeel/go-bmp/internal/histogram"
	"github.com/anas-shakeel/go-bmp/internal/preview"
	"github.com/anas-shakeel/go-bmp/internal/raster"
	"github.com/anas-shakeel/go-bmp/internal/session"
)

func newInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info FILE",
		Short: "Print the image metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := session.New()
			if err := s.Load(args[0]); err != nil {
				return err
			}
			m, err := s.Info()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Filename: \t%v\n", m.Filename)
			fmt.Fprintf(w, "Filesize: \t%v bytes\n", m.FileSize)
			fmt.Fprintf(w, "Width: \t\t%v px\n", m.Width)
			fmt.Fprintf(w, "Height: \t%v px\n", m.Height)
			fmt.Fprintf(w, "BitCount: \t%vbits\n", m.BitCount)
			fmt.Fprintf(w, "Channels: \t%v\n", m.Channels)
			fmt.Fprintf(w, "PixelOffset: \t%v bytes\n", m.PixelOffset)
			fmt.Fprintf(w, "PixelCount: \t%v pixels\n", m.Width*m.Height)
			fmt.Fprintf(w, "ImageSize: \t%v bytes\n", m.ImageSize)
			fmt.Fprintf(w, "Stride: \t%v bytes\n", m.Stride)
			fmt.Fprintf(w, "Padding: \t%v bytes\n", m.Padding)
			return nil
		},
	}
}

func newApplyCommand() *cobra.Command {
	var (
		output string
		ops    []string
	)
	cmd := &cobra.Command{
		Use:   "apply FILE",
		Short: "Apply operations in order and save the result",
		Example: `  go-bmp apply in.bmp -o out.bmp --op negative
  go-bmp apply in.bmp -o out.bmp --op brightness=40 --op gaussian-blur --op equalize`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Parse everything first so a typo does not cost a decode
			parsed := make([]session.Op, 0, len(ops))
			for _, o := range ops {
				op, err := session.ParseOp(o)
				if err != nil {
					return err
				}
				parsed = append(parsed, op)
			}

			s := session.New()
			defer s.Close()
			if err := s.Load(args[0]); err != nil {
				return err
			}
			for _, op := range parsed {
				if err := s.Apply(op); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s applied.\n", op)
			}
			if err := s.Save(output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Image saved in %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write the result to")
	cmd.Flags().StringArrayVar(&ops, "op", nil, "operation as name or name=arg; repeatable (see 'go-bmp filters')")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func newHistogramCommand() *cobra.Command {
	var (
		channel channelFlag
		step    int
	)
	cmd := &cobra.Command{
		Use:   "histogram FILE",
		Short: "Print the intensity histogram and its CDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if step <= 0 {
				return fmt.Errorf("--step must be positive, got %d", step)
			}
			s := session.New()
			if err := s.Load(args[0]); err != nil {
				return err
			}
			img, err := s.Image()
			if err != nil {
				return err
			}

			h, err := channelHistogram(img.Raster, string(channel))
			if err != nil {
				return err
			}
			cdf := h.CDF()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "level\tcount\tcdf\t")
			for i := 0; i < histogram.Levels; i += step {
				fmt.Fprintf(tw, "%d\t%d\t%d\t\n", i, h[i], cdf[i])
			}
			fmt.Fprintf(tw, "total\t%d\t%d\t\n", h.Total(), cdf[histogram.Levels-1])
			return tw.Flush()
		},
	}
	cmd.Flags().Var(&channel, "channel", "gray, luma, red, green or blue (default gray for 8-bit, luma for 24-bit)")
	cmd.Flags().IntVar(&step, "step", 32, "print every step-th level")
	return cmd
}

func channelHistogram(b *raster.Buffer, channel string) (histogram.Histogram, error) {
	if channel == "" {
		channel = "gray"
		if b.Channels == raster.RGB {
			channel = "luma"
		}
	}
	switch channel {
	case "gray":
		return histogram.Compute(b)
	case "luma":
		return histogram.ComputeLuma(b)
	case "red", "green", "blue":
		if err := b.Require(raster.RGB); err != nil {
			return histogram.Histogram{}, err
		}
		c := map[string]int{"red": 0, "green": 1, "blue": 2}[channel]
		return histogram.ComputeChannel(b, c)
	}
	return histogram.Histogram{}, fmt.Errorf("unknown channel %q", channel)
}

var channelNames = []string{"gray", "luma", "red", "green", "blue"}

// channelFlag is a --channel value restricted to channelNames.
type channelFlag string

var _ pflag.Value = (*channelFlag)(nil)

func (c *channelFlag) String() string { return string(*c) }

func (c *channelFlag) Set(v string) error {
	v = strings.ToLower(v)
	if !slices.Contains(channelNames, v) {
		return fmt.Errorf("must be one of %s", strings.Join(channelNames, ", "))
	}
	*c = channelFlag(v)
	return nil
}

func (c *channelFlag) Type() string { return "channel" }

func newPreviewCommand() *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Print the image in a true-color terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := session.New()
			if err := s.Load(args[0]); err != nil {
				return err
			}
			img, err := s.Image()
			if err != nil {
				return err
			}
			return preview.Render(cmd.OutOrStdout(), img.Raster, width)
		},
	}
	cmd.Flags().IntVar(&width, "width", 64, "maximum width in pixels, 0 for no scaling")
	return cmd
}

func newFiltersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "filters",
		Short: "List the operations accepted by apply --op",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, name := range session.OpNames() {
				fmt.Fprintf(tw, "%s\t%s\n", name, session.Usage(name))
			}
			return tw.Flush()
		},
	}
}
