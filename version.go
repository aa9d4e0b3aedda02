package docqa

var Version = "v0.0.1"
