// Package plan defines the video plan data model shared by the resolution
// pipeline and the CLI.
//
// A VideoPlan is an ordered list of scenes, each holding typed elements. The
// loose element shape used on disk (type tag, content string, free-form style
// map) is converted to a closed set of element bodies at the codec boundary so
// pipeline code never probes maps for field presence. Plans are treated as
// values: helpers that change a plan return a new one and leave the input
// untouched.
package plan
