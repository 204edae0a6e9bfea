package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Domain field helpers

func Component(name string) Field {
	return String("component", name)
}

func Phase(name string) Field {
	return String("phase", name)
}

func Variant(name string) Field {
	return String("variant", name)
}

func RunID(id string) Field {
	return String("run_id", id)
}

func Source(name string) Field {
	return String("source", name)
}

// Line is the 1-based number of an input line.
func Line(n int) Field {
	return Int("line", n)
}

func ASN(asn string) Field {
	return String("asn", asn)
}

// Edge renders a directed AS pair as "u->v".
func Edge(from, to string) Field {
	return String("edge", from+"->"+to)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Count(n int) Field {
	return Int("count", n)
}
