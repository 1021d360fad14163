package automatic

import (
	"io"

	"github.com/logrusorgru/aurora"
	"github.com/schollz/progressbar/v3"
)

type Bar progressbar.ProgressBar

func NewBar(w io.Writer, max int, description string) *Bar {
	return (*Bar)(progressbar.NewOptions(max,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        aurora.Green("=").String(),
			SaucerHead:    aurora.Green(">").String(),
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	))
}

func (b *Bar) Add(i int) {
	(*progressbar.ProgressBar)(b).Add(i)
}

func (b *Bar) Close() {
	(*progressbar.ProgressBar)(b).Finish()
	(*progressbar.ProgressBar)(b).Close()
}
