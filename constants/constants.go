package constants

// StaticFile identifies one member file of a GTFS static bundle.
type StaticFile string

const (
	AgencyFile        StaticFile = "agency.txt"
	StopsFile         StaticFile = "stops.txt"
	RoutesFile        StaticFile = "routes.txt"
	TripsFile         StaticFile = "trips.txt"
	StopTimesFile     StaticFile = "stop_times.txt"
	CalendarFile      StaticFile = "calendar.txt"
	CalendarDatesFile StaticFile = "calendar_dates.txt"
	ShapesFile        StaticFile = "shapes.txt"
	TransfersFile     StaticFile = "transfers.txt"
)

// RequiredFiles lists the bundle members the publishing pipeline cannot run
// without. shapes.txt is deliberately absent: a feed without shapes publishes
// a stops layer only.
var RequiredFiles = []StaticFile{
	StopsFile,
	RoutesFile,
	TripsFile,
}
