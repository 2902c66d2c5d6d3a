package network

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"

	"github.com/sarchlab/ethersim/device"
	"github.com/sarchlab/ethersim/frame"
	"github.com/sarchlab/ethersim/sim"
)

// logFiles keeps one logger per file name under a directory.
type logFiles struct {
	dir     string
	files   map[string]*os.File
	loggers map[string]*log.Logger
	err     error
}

func newLogFiles(dir string) logFiles {
	return logFiles{
		dir:     dir,
		files:   make(map[string]*os.File),
		loggers: make(map[string]*log.Logger),
	}
}

func (l *logFiles) logger(name string) *log.Logger {
	if lg, ok := l.loggers[name]; ok {
		return lg
	}

	f, err := os.Create(filepath.Join(l.dir, name))
	if err != nil {
		l.err = multierror.Append(l.err, err)
		lg := log.New(io.Discard, "", 0)
		l.loggers[name] = lg

		return lg
	}

	lg := log.New(f, "", 0)
	l.files[name] = f
	l.loggers[name] = lg

	return lg
}

func (l *logFiles) Close() error {
	result := l.err

	for _, f := range l.files {
		if err := f.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	l.files = make(map[string]*os.File)
	l.loggers = make(map[string]*log.Logger)

	return result
}

// DeviceLogger writes the signal activity of each device to <device>.txt.
// Every line starts with the tick.
type DeviceLogger struct {
	timeTeller sim.TimeTeller
	files      logFiles
}

// NewDeviceLogger creates a DeviceLogger writing into dir.
func NewDeviceLogger(dir string, timeTeller sim.TimeTeller) *DeviceLogger {
	return &DeviceLogger{
		timeTeller: timeTeller,
		files:      newLogFiles(dir),
	}
}

// Func writes one line per signal event.
func (l *DeviceLogger) Func(ctx sim.HookCtx) {
	d, ok := ctx.Domain.(device.Device)
	if !ok {
		return
	}

	now := l.timeTeller.CurrentTime()
	lg := l.files.logger(d.Name() + ".txt")

	switch item := ctx.Item.(type) {
	case device.SignalRecord:
		l.logSignal(lg, now, ctx.Pos, item)
	case device.LearnRecord:
		lg.Printf("%d %s learn %s", now, d.PortName(item.Port), item.MAC)
	}
}

func (l *DeviceLogger) logSignal(
	lg *log.Logger,
	now sim.VTick,
	pos *sim.HookPos,
	r device.SignalRecord,
) {
	switch pos {
	case device.HookPosSignalRecv:
		lg.Printf("%d %s receive %s", now, r.Where, r.Signal)
	case device.HookPosSignalSend:
		if r.Confirmed {
			lg.Printf("%d %s send %s ok", now, r.Where, r.Signal)
		} else {
			lg.Printf("%d %s send %s", now, r.Where, r.Signal)
		}
	case device.HookPosCollision:
		lg.Printf("%d %s send %s collision", now, r.Where, r.Signal)
	}
}

// Close closes the log files.
func (l *DeviceLogger) Close() error {
	return l.files.Close()
}

// DataLogger writes the frames each host receives to <host>_data.txt as the
// payload in hex and ERROR for frames that fail error detection. Each line
// names the source MAC of the frame, not its destination.
type DataLogger struct {
	timeTeller sim.TimeTeller
	files      logFiles
}

// NewDataLogger creates a DataLogger writing into dir.
func NewDataLogger(dir string, timeTeller sim.TimeTeller) *DataLogger {
	return &DataLogger{
		timeTeller: timeTeller,
		files:      newLogFiles(dir),
	}
}

// Func writes one line per received frame.
func (l *DataLogger) Func(ctx sim.HookCtx) {
	if ctx.Pos != device.HookPosFrameRecv {
		return
	}

	rec, ok := ctx.Item.(device.FrameRecord)
	if !ok {
		return
	}

	now := l.timeTeller.CurrentTime()
	lg := l.files.logger(rec.Host + "_data.txt")

	line := rec.Src.String() + " " + frame.HexData(rec.Payload)
	if !rec.Valid {
		line += " ERROR"
	}

	lg.Printf("%d %s", now, line)
}

// Close closes the log files.
func (l *DataLogger) Close() error {
	return l.files.Close()
}
