package dump1030

/*------------------------------------------------------------------
 *
 * Purpose:	Save detected interrogations to a log file.
 *
 * Description: One CSV line per accepted message, easy to pull into
 *		a spreadsheet for later processing.
 *
 *		There are two alternatives here.
 *
 *		--log-file file		Specify full file path.
 *
 *		--log-dir dir		Daily names will be created here.
 *
 *		Use one or the other but not both.
 *
 *------------------------------------------------------------------*/

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/lestrrat-go/strftime"
)

const logHeader = "utime,isotime,cycle,sample,mode,variant,order\n"

// UTC date, always %Y-%m-%d so the files sort.
const dailyLogPattern = "%Y-%m-%d.log"

type DetectionLog struct {
	dailyNames bool
	path       string // directory for daily names, otherwise the file
	fp         *os.File
	openName   string
	now        func() time.Time
}

/*------------------------------------------------------------------
 *
 * Function:	NewDetectionLog
 *
 * Inputs:	dailyNames	- True if daily names should be generated.
 *				  In this case path is a directory.
 *				  When false, path would be the file name.
 *
 *		path		- Log file name or just directory.
 *				  Use "." for current directory.
 *
 *------------------------------------------------------------------*/

func NewDetectionLog(dailyNames bool, path string) *DetectionLog {
	var l = &DetectionLog{dailyNames: dailyNames, path: path, fp: nil, openName: "", now: time.Now}

	if !dailyNames {
		logger.Info("log file", "path", path)

		return l
	}

	var stat, statErr = os.Stat(path)

	switch {
	case statErr == nil && stat.IsDir():
	case statErr == nil:
		logger.Error("log file location is not a directory, using \".\" instead", "path", path)
		l.path = "."
	default:
		// Parent directory must exist.  We don't create multiple levels like "mkdir -p".
		if err := os.Mkdir(path, 0755); err != nil { //nolint:gosec
			logger.Error("failed to create log file location, using \".\" instead", "path", path, "err", err)
			l.path = "."
		} else {
			logger.Info("log file location has been created", "path", path)
		}
	}

	return l
}

// open makes sure the right file is open for now, writing a header to new files.
func (l *DetectionLog) open(now time.Time) bool {
	var fullPath = l.path

	if l.dailyNames {
		var fname, _ = strftime.Format(dailyLogPattern, now)

		// Close current file if name has changed
		if l.fp != nil && fname != l.openName {
			l.Close()
		}

		fullPath = filepath.Join(l.path, fname)
		l.openName = fname
	}

	if l.fp != nil {
		return true
	}

	// See if file already exists and not empty.
	var stat, statErr = os.Stat(fullPath)
	var alreadyThere = statErr == nil && stat.Size() > 0

	logger.Info("opening log file", "path", fullPath)

	var f, err = os.OpenFile(fullPath, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0644) //nolint:gosec
	if err != nil {
		logger.Error("can't open log file for write", "path", fullPath, "err", err)
		l.openName = ""

		return false
	}

	l.fp = f

	if !alreadyThere {
		_, _ = f.WriteString(logHeader)
	}

	return true
}

func (l *DetectionLog) Cycle(res CycleResult) {
	if len(res.Scan.Messages) == 0 {
		return
	}

	var now = l.now().UTC()

	if !l.open(now) {
		return
	}

	var w = csv.NewWriter(l.fp)
	var utime = strconv.FormatInt(now.Unix(), 10)
	var itime = now.Format("2006-01-02T15:04:05Z")

	for _, msg := range res.Scan.Messages {
		var variant = ""
		if msg.Kind != ModeS {
			variant = msg.Variant.String()
		}

		_ = w.Write([]string{
			utime,
			itime,
			strconv.Itoa(res.Index),
			strconv.Itoa(msg.Start),
			msg.Kind.String(),
			variant,
			strconv.Itoa(int(msg.OrderCode())),
		})
	}

	w.Flush()

	if err := w.Error(); err != nil {
		logger.Error("writing log file", "err", err)
	}
}

func (l *DetectionLog) Close() {
	if l.fp != nil {
		_ = l.fp.Close()
		l.fp = nil
	}
}
