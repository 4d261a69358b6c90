package interfaces

type ILogger interface {
	Named(name string) ILogger
	With(args ...interface{}) ILogger

	Sync() error

	Panic(args ...interface{})
	Fatal(args ...interface{})
	Error(args ...interface{})
	Warn(args ...interface{})
	Info(args ...interface{})
	Debug(args ...interface{})

	Panicf(template string, args ...interface{})
	Fatalf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Debugf(template string, args ...interface{})

	Panicw(template string, args ...interface{})
	Fatalw(template string, args ...interface{})
	Errorw(template string, args ...interface{})
	Warnw(template string, args ...interface{})
	Infow(template string, args ...interface{})
	Debugw(template string, args ...interface{})
}
