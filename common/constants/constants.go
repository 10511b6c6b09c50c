// Package constants centralizes shared configuration defaults and
// hardcoded values used throughout recordstore.
package constants

// --- General Constants ---

// DefaultConfigPath is a conventional location for a recordstore
// configuration file. common/config does not read it: with no explicit
// path, its loader searches for recordstore.yaml in ".", "./configs", and
// "$HOME/.recordstore".
const DefaultConfigPath = "./configs/config.yaml"

// DefaultDataPath is the default directory where backend data will be stored.
const DefaultDataPath = "./data"

// ProjectName is the name of the project, used by common/config as the
// default config file base name and the per-user config directory name.
const ProjectName = "recordstore"

// Version is the current version of recordstore.
const Version = "0.1.0-alpha"

// --- Backend Constants ---

// DefaultBackend selects which kvstore.Handle backend the demo CLI opens when no
// --backend flag is given.
const DefaultBackend = "memory"

// DefaultBoltPath is the default bolt database file within DefaultDataPath.
const DefaultBoltPath = DefaultDataPath + "/store.bolt"

// DefaultBadgerPath is the default badger data directory within DefaultDataPath.
const DefaultBadgerPath = DefaultDataPath + "/badger"

// BadgerValueLogFileSize is the maximum size of a BadgerDB value log file in bytes.
const BadgerValueLogFileSize = 128 << 20 // 128 MB

// BadgerSyncWrites enables or disables synchronous writes for BadgerDB (forces disk flush).
const BadgerSyncWrites = false

// BoltFileMode is the file mode bolt opens its database file with.
const BoltFileMode = 0600

// --- Logging Constants ---

// DefaultLogLevel is the default severity level for logging.
const DefaultLogLevel = "INFO"

// DefaultLogFilePath is the default path for the recordstore log file. Empty
// disables file output and logs to stdout only.
const DefaultLogFilePath = ""

// LogFileMaxSizeMB is the maximum size in MB before a log file is rotated.
const LogFileMaxSizeMB = 100

// LogFileMaxBackups is the maximum number of old log files to retain.
const LogFileMaxBackups = 5

// LogFileMaxAgeDays is the maximum number of days to retain old log files.
const LogFileMaxAgeDays = 7
