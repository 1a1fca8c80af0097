package courier

// Database is the lifecycle shared by every store driver.
type Database interface {
	Open() error
	Close() error
}
