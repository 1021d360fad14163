package automatic

// Computer vs computer rounds, for checking the search and collecting data.

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"io"
	"runtime"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/tictactoe/board"
	"github.com/domino14/tictactoe/config"
	"github.com/domino14/tictactoe/game"
	"github.com/domino14/tictactoe/stats"
)

var (
	CVCCounter *expvar.Int
	IsPlaying  *expvar.Int
)

func init() {
	CVCCounter = expvar.NewInt("cvcCounter")
	IsPlaying = expvar.NewInt("isPlaying")
}

var errAlreadyPlaying = errors.New("rounds are already being played, please wait till complete")

type Options struct {
	Rounds        int
	Threads       int
	Opponent      string
	RandomOpening bool
	// LogWriter receives one JSON line per finished round.
	LogWriter io.Writer
	// Progress receives a progress bar.
	Progress io.Writer
}

// OptionsFromConfig fills in what the config knows about.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Threads:       cfg.GetInt(config.ConfigAutoplayThreads),
		Opponent:      OptimalPlayer,
		RandomOpening: cfg.GetBool(config.ConfigRandomOpening),
	}
}

// Summary totals a batch of rounds. Unlike the session score, draws are
// counted on their own.
type Summary struct {
	Rounds    int
	HumanWins int
	AIWins    int
	Draws     int
	Lengths   stats.Statistic

	lengths []float64
}

func (s *Summary) add(rec RoundRecord) {
	s.Rounds++
	switch rec.result {
	case game.HumanWin:
		s.HumanWins++
	case game.AIWin:
		s.AIWins++
	case game.Draw:
		s.Draws++
	}
	s.Lengths.Push(float64(len(rec.Moves)))
	s.lengths = append(s.lengths, float64(len(rec.Moves)))
}

// merge folds a worker's totals into s.
func (s *Summary) merge(o *Summary) {
	s.Rounds += o.Rounds
	s.HumanWins += o.HumanWins
	s.AIWins += o.AIWins
	s.Draws += o.Draws
	s.Lengths.Merge(&o.Lengths)
	s.lengths = append(s.lengths, o.lengths...)
}

// Histogram draws how round lengths were spread.
func (s *Summary) Histogram(w io.Writer) error {
	if s.Rounds == 0 {
		return errors.New("no rounds played")
	}
	if s.Lengths.Min() == s.Lengths.Max() {
		_, err := fmt.Fprintf(w, "all %d rounds lasted %.0f moves\n", s.Rounds, s.Lengths.Min())
		return err
	}
	bins := int(s.Lengths.Max()-s.Lengths.Min()) + 1
	return histogram.Fprint(w, histogram.Hist(bins, s.lengths), histogram.Linear(40))
}

func (s *Summary) String() string {
	mean, half := stats.ConfidenceInterval(&s.Lengths, 95)
	return fmt.Sprintf("%d rounds: ai won %d, human side won %d, %d drawn. "+
		"Moves per round: %.2f ± %.2f (95%%), min %.0f, max %.0f",
		s.Rounds, s.AIWins, s.HumanWins, s.Draws, mean, half,
		s.Lengths.Min(), s.Lengths.Max())
}

// PlayRounds plays opts.Rounds rounds spread over opts.Threads workers, each
// with its own controller. It stops early if ctx is cancelled and returns
// what was played so far along with the context's error.
func PlayRounds(ctx context.Context, opts Options) (*Summary, error) {
	if IsPlaying.Value() > 0 {
		return nil, errAlreadyPlaying
	}
	if opts.Rounds <= 0 {
		return nil, errors.New("need a positive number of rounds")
	}
	if opts.Opponent == "" {
		opts.Opponent = OptimalPlayer
	}
	// Fail fast on a bad player name before spinning anything up.
	if _, err := NewPlayer(opts.Opponent, board.Human); err != nil {
		return nil, err
	}
	threads := opts.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	threads = min(threads, opts.Rounds)
	log.Debug().Int("rounds", opts.Rounds).Int("threads", threads).
		Str("opponent", opts.Opponent).Msg("starting-autoplay")

	CVCCounter.Set(0)
	var bar *Bar
	if opts.Progress != nil {
		bar = NewBar(opts.Progress, opts.Rounds, "Playing rounds")
	}

	var logChan chan string
	logDone := make(chan struct{})
	if opts.LogWriter != nil {
		logChan = make(chan string, 100)
		go func() {
			defer close(logDone)
			for line := range logChan {
				if _, err := io.WriteString(opts.LogWriter, line); err != nil {
					log.Err(err).Msg("autoplay-log-write")
				}
			}
		}()
	} else {
		close(logDone)
	}

	perWorker := make([]Summary, threads)
	jobs := make(chan struct{})
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < opts.Rounds; i++ {
			select {
			case jobs <- struct{}{}:
			case <-gctx.Done():
				log.Info().Int("queued", i).Msg("got stop signal, exiting soon")
				return gctx.Err()
			}
		}
		return nil
	})

	for t := 0; t < threads; t++ {
		ws := &perWorker[t]
		g.Go(func() error {
			r, err := NewGameRunner(logChan, opts.Opponent, opts.RandomOpening)
			if err != nil {
				return err
			}
			IsPlaying.Add(1)
			defer IsPlaying.Add(-1)
			for range jobs {
				rec, err := r.PlayRound()
				if err != nil {
					return err
				}
				CVCCounter.Add(1)
				ws.add(rec)
				if bar != nil {
					bar.Add(1)
				}
			}
			return nil
		})
	}

	err := g.Wait()
	summary := &Summary{}
	for i := range perWorker {
		summary.merge(&perWorker[i])
	}
	if logChan != nil {
		close(logChan)
	}
	<-logDone
	if bar != nil {
		bar.Close()
	}
	log.Info().Int("rounds", summary.Rounds).Int("ai-wins", summary.AIWins).
		Int("human-wins", summary.HumanWins).Int("draws", summary.Draws).
		Msg("autoplay-finished")
	return summary, err
}
