package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Eracal/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Eracal"
	BinaryName        = "eracal"
	AppID             = "com.github.tartampluch.go-eracal"
	KeyringService    = "com.github.tartampluch.go-eracal"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	ConfigFileName    = ".eracal"
	ConfigFileType    = "yaml"
	EnvPrefix         = "ERACAL"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for sensitive files like logs.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Commands, Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion    = "version"
	FlagDebug      = "debug"
	FlagConfig     = "config"
	FlagCalendar   = "calendar"
	FlagTarget     = "to"
	FlagLenient    = "lenient"
	FlagJDN        = "jdn"
	FlagEra        = "era"
	FlagYear       = "year"
	FlagMonth      = "month"
	FlagDay        = "day"
	FlagList       = "list"
	FlagLocale     = "locale"
	FlagOutput     = "output"
	FlagPort       = "port"
	FlagVariants   = "variants"
	FlagSourceMode = "source"
	FlagLocalPath  = "file"
	FlagWebURL     = "url"
	FlagWebUser    = "user"
	FlagReminder   = "reminder"
	FlagInterval   = "interval"

	FlagDescVersion    = "Show application version and exit"
	FlagDescDebug      = "Enable debug logging to stderr"
	FlagDescConfig     = "Config file (default is ./.eracal.yaml then $HOME/.eracal.yaml)"
	FlagDescCalendar   = "Calendar variant (buddhist, gregorian, roc or a custom name)"
	FlagDescTarget     = "Target calendar variant for conversion"
	FlagDescLenient    = "Normalize out-of-range fields instead of rejecting them"
	FlagDescJDN        = "Julian Day Number to expand into fields"
	FlagDescEra        = "Era of the supplied year (multi-era calendars only)"
	FlagDescYear       = "Era-relative year"
	FlagDescMonth      = "Month, 0-based (0 is January)"
	FlagDescDay        = "Day of month"
	FlagDescList       = "Print upcoming dates instead of the iCalendar feed"
	FlagDescLocale     = "Locale used for month and era names"
	FlagDescOutput     = "Write output to this file instead of stdout"
	FlagDescPort       = "HTTP port to listen on"
	FlagDescVariants   = "TOML file with custom calendar definitions"
	FlagDescSourceMode = "vCard source: local or web"
	FlagDescLocalPath  = "Path to a local .vcf file"
	FlagDescWebURL     = "CardDAV/WebDAV URL of the vCard collection"
	FlagDescWebUser    = "Username for the vCard URL (password read from the OS keyring)"
	FlagDescReminder   = "ISO8601 alarm trigger, e.g. -P1D"
	FlagDescInterval   = "Feed refresh interval in minutes (0 disables)"

	MsgVersionOutput = "%s version %s (%s/%s)\n"
	MsgUpcomingLine  = "%s  %s  %s (%s)\n"
	MsgPasswordStore = "Password saved for %s\n"
	PromptPassword   = "Password: "

	CmdFields    = "fields"
	CmdConvert   = "convert"
	CmdCalendars = "calendars"
	CmdFeed      = "feed"
	CmdServe     = "serve"
	CmdLogin     = "login"
)

// -----------------------------------------------------------------------------
// Settings Keys (viper)
// -----------------------------------------------------------------------------

const (
	KeyCalendar       = "calendar"
	KeyLenient        = "lenient"
	KeyLocale         = "locale"
	KeyFirstDayOfWeek = "first_day_of_week"
	KeyMinimalDays    = "minimal_days_in_first_week"
	KeyVariantsFile   = "variants_file"
	KeyDebug          = "debug"
	KeyServerPort     = "server.port"
	KeyRefreshMin     = "feed.refresh_interval_min"
	KeySourceMode     = "feed.source_mode"
	KeyLocalPath      = "feed.local_path"
	KeyWebURL         = "feed.web_url"
	KeyWebUser        = "feed.web_user"
	KeyReminder       = "feed.reminder_trigger"
)

// -----------------------------------------------------------------------------
// Calendar Variants
// -----------------------------------------------------------------------------

const (
	CalendarBuddhist  = "buddhist"
	CalendarGregorian = "gregorian"
	CalendarROC       = "roc"

	// BuddhistEraStart is the extended year offset of the Buddhist Era:
	// 1 BE is extended year -542 (544 BC), so 1 AD is 544 BE.
	BuddhistEraStart = -543

	// ROCEraStart is the last extended year before Minguo 1 (1912 AD).
	ROCEraStart = 1911

	// MaxEraYear is the largest era-relative year accepted in strict mode.
	MaxEraYear = 5000000

	// DefaultEraYear is used when neither YEAR nor EXTENDED_YEAR is set.
	DefaultEraYear = 1
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	SourceModeWeb         = "web"
	SourceModeLocal       = "local"
	DefaultCalendar       = CalendarBuddhist
	DefaultLocale         = "en"
	DefaultPort           = "18080"
	DefaultRefreshMin     = 60
	DefaultFirstDayOfWeek = 1 // Sunday
	DefaultMinimalDays    = 1
	DefaultLenient        = true
	DefaultLeapYear       = 2000 // Leap year placeholder for dates like --02-29
	UIDSalt               = "go-eracal-v1-"
)

// SupportedLanguages lists the embedded locales (ISO 639-1).
var SupportedLanguages = []string{"en", "fr", "th"}

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyMonthPrefix   = "month_"   // month_0 .. month_11
	TKeyWeekdayPrefix = "weekday_" // weekday_1 (Sunday) .. weekday_7
	TKeyEraPrefix     = "era_"     // era_<calendar>_<era>
	TKeyDatePattern   = "date_pattern"

	TKeyEvtBirthday       = "event_birthday"        // Requires Name, Year, Era
	TKeyEvtBirthdayAge    = "event_birthday_age"    // Requires Name, Age, Year, Era
	TKeyEvtAnniversary    = "event_anniversary"     // Requires Name, Year, Era
	TKeyEvtAnniversaryAge = "event_anniversary_age" // Requires Name, Age, Year, Era

	LocaleDir        = "locales"
	LocaleFilePrefix = "active."
	LocaleFileExt    = ".json"
	LocaleFormat     = "json"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go Eracal//Feed//EN"
	ICalCalName   = "Anniversaries"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "goeracal"

	// iCal/vCard Fields
	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"
	PropCategories  = "CATEGORIES"

	VCardBDAY        = "BDAY"
	VCardAnniversary = "ANNIVERSARY"
	VCardFN          = "FN"
	VCardN           = "N"

	DefaultICalRefresh = 1 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// Date layouts used for parsing vCard BDAY/ANNIVERSARY fields
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"

	// Limits
	MinPort = 1
	MaxPort = 65535

	// UID Generation
	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s|%s"
	FormatUID       = "%s-%d@%s"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 256 * 1024 * 1024 // 256MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteRoot           = "/"
	RouteFields         = "/fields"
	RouteCalendars      = "/calendars"
	AddrSeparator       = ":"
	WatchDebounce       = 100 * time.Millisecond
)

// Query parameters accepted by the fields endpoint.
const (
	QueryCalendar = "calendar"
	QueryJDN      = "jdn"
	QueryYear     = "year"
	QueryMonth    = "month"
	QueryDay      = "day"
	QueryEra      = "era"
	QueryLenient  = "lenient"
	QueryLocale   = "locale"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"
	HeaderAccept          = "Accept"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json; charset=utf-8"
	MimeAcceptVCard     = "text/vcard, text/x-vcard;q=0.9, */*;q=0.1"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrInvalidEra        = "invalid era"
	ErrInvalidYear       = "invalid year"
	ErrInvalidField      = "invalid field value"
	ErrUnsupportedField  = "field does not support this operation"
	ErrUnknownField      = "unknown calendar field"
	ErrUnknownCalendar   = "unknown calendar"
	ErrDuplicateCalendar = "calendar already registered"
	ErrInvalidDefinition = "invalid calendar definition"
	ErrDefinitionsRead   = "failed to read calendar definitions"
	ErrDefinitionsParse  = "failed to parse calendar definitions"
	ErrWatcher           = "failed to watch calendar definitions"
	ErrLocalPathEmpty    = "configuration error: local path is empty"
	ErrWebURLEmpty       = "configuration error: web URL is empty"
	ErrFetcherMissing    = "internal error: network fetcher is not initialized"
	ErrModeUnsupport     = "configuration error: unsupported source mode"
	ErrServerStartup     = "server startup failed"
	ErrServerShutdown    = "server shutdown failed"
	ErrPortRequired      = "server port is required"
	ErrPortNumber        = "server port must be a number"
	ErrPortRange         = "server port must be between 1 and 65535"
	ErrInvalidURL        = "invalid URL structure"
	ErrProtocol          = "unsupported protocol scheme (http/https only)"
	ErrFetchRequest      = "failed to create vCard request"
	ErrFetchNetwork      = "network error during vCard fetch"
	ErrFetchStatus       = "vCard server returned unexpected status"
	ErrFetchTooLarge     = "vCard response exceeds size limit"
	ErrVCardParse        = "failed to parse vCard stream"
	ErrICalEncode        = "failed to encode iCalendar data"
	ErrDateParse         = "unable to parse date"
	ErrLogFile           = "failed to open log file"
	ErrCacheDir          = "could not determine user cache dir"
	ErrCreateDir         = "could not create app cache dir"
	ErrAppFailed         = "application failed unexpectedly"
	ErrWriteResp         = "failed to write response body"
	ErrLocalesAccess     = "failed to access embedded locales"
	ErrLocaleLoad        = "failed to load locale file"
	ErrKeyring           = "failed to read password from keyring"
	ErrKeyringStore      = "failed to save password to keyring"
	ErrQueryParam        = "invalid query parameter"
	ErrSettingsLoad      = "failed to load settings"
	ErrOutputWrite       = "failed to write output"
	ErrWebUserEmpty      = "configuration error: web user is empty"
	ErrPasswordRead      = "failed to read password"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgInternalErr  = "Internal Server Error"
)

// -----------------------------------------------------------------------------
// Fallbacks & Log Messages
// -----------------------------------------------------------------------------

const (
	FallbackSummary    = "%s (%d %s)"
	FallbackSummaryAge = "%s: %d (%d %s)"
	FallbackName       = "Unknown"
	FallbackEraName    = "%s:%d" // calendar name, era id

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	MsgSyncStarted      = "Synchronization started..."
	MsgSyncFailed       = "Synchronization failed"
	MsgWorkerStart      = "Background worker started"
	MsgWorkerStop       = "Worker stopping due to context cancellation"
	MsgAppStop          = "Application stopped gracefully"
	MsgSkippedCard      = "Skipping malformed vCard"
	MsgSkippedDate      = "Skipping invalid date format"
	MsgGenSuccess       = "Calendar generation successful"
	MsgAppStarting      = "Starting application"
	MsgServerListen     = "HTTP server listening"
	MsgServerStop       = "Shutting down HTTP server..."
	MsgCacheUpdated     = "Calendar cache updated"
	MsgLocaleSkip       = "Skipping non-locale file"
	MsgLocaleBadName    = "Skipping malformed locale filename"
	MsgLocaleLoaded     = "Locale loaded successfully"
	MsgTransMissing     = "Missing translation key"
	MsgPassFail         = "Password retrieval failed (might be empty)"
	MsgLogWarning       = "Warning: %s at %s: %v\n"
	MsgEventToday       = "Anniversary found today"
	MsgFieldsIssues     = "Field validation reported issues"
	MsgFieldsRejected   = "Field validation rejected the field set"
	MsgDefinitionsLoad  = "Calendar definitions loaded"
	MsgDefinitionsWatch = "Watching calendar definitions"
	MsgDefinitionsStale = "Keeping previous calendar definitions"
	MsgFieldsRequest    = "Fields requested"
	MsgFetchStart       = "Downloading vCards"
	MsgFetchStatus      = "vCard server returned error status"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeyInterval  = "interval"
	LogKeyUser      = "user"
	LogKeyTotal     = "total_cards"
	LogKeyFound     = "dates_found"
	LogKeyToday     = "events_today"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyCount     = "count"
	LogKeyName      = "name"
	LogKeyDate      = "date"
	LogKeyDuration  = "duration_ms"
	LogKeyCalendar  = "calendar"
	LogKeyIssues    = "issues"
	LogKeyLenient   = "lenient"
	LogKeyJDN       = "jdn"
	LogKeyEraYear   = "era_year"
	LogKeyCommand   = "command"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompCalendar = "calendar"
	CompEra      = "era"
	CompFormat   = "format"
	CompFeed     = "feed"
	CompServer   = "server"
	CompFetcher  = "fetcher"
	CompWorker   = "worker"
	CompMain     = "main"
)
