package buildpipeline

import (
	"viewc/internal/driver"
)

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(evt Event) {
	if f != nil {
		f(evt)
	}
}

// progressObserver folds the driver's per-stage events into the coarser
// parse/check stages. Paths are reported relative to baseDir.
func progressObserver(sink ProgressSink, baseDir string) driver.Observer {
	if sink == nil {
		return nil
	}
	base := absBase(baseDir)
	return func(ev driver.Event) {
		out := Event{File: displayPath(ev.Path, base), Err: ev.Err, Elapsed: ev.Elapsed, Cached: ev.Cached}
		switch ev.Status {
		case driver.StatusQueued:
			out.Stage, out.Status = StageParse, StatusQueued
		case driver.StatusWorking:
			switch ev.Stage {
			case "":
				out.Stage, out.Status = StageParse, StatusWorking
			case driver.StageParse:
				out.Stage, out.Status = StageCheck, StatusWorking
			default:
				return
			}
		case driver.StatusDone:
			out.Stage, out.Status = StageCheck, StatusDone
		case driver.StatusError:
			out.Stage, out.Status = StageCheck, StatusError
		default:
			return
		}
		sink.OnEvent(out)
	}
}
