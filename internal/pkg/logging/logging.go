package logging

import (
	"io"
	"log"
	"os"

	"github.com/covalenthq/lumberjack"
)

// Setup routes the standard logger to stdout and, when file is set, to a
// rotating log file. It returns the writer to hand to gin.
func Setup(file string) io.Writer {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	if file == "" {
		log.SetOutput(os.Stdout)
		return os.Stdout
	}

	w := io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   file,
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	})
	log.SetOutput(w)
	return w
}
