package utils

//PaddingClassID marks an empty layout slot. It never matches a frame's class
const PaddingClassID = ""

//DefaultHTTPPort is the port used when the config file does not set one
const DefaultHTTPPort = "8050"

//DefaultPlaybackIntervalMS is the auto-play tick the client uses to advance one frame
const DefaultPlaybackIntervalMS = 700

//DefaultFrameRate is the frame rate of the source footage
const DefaultFrameRate = 24.0

//DefaultLayoutPolicy is the rectangle policy used to place classes on the heatmap
const DefaultLayoutPolicy = "square"

//DefaultFrameColumn holds the image filename of each row
const DefaultFrameColumn = "Frames"

//DefaultTop1Column holds the predicted top-1 class of each row
const DefaultTop1Column = "class_str_top1"

//DefaultTop1ScoreColumn holds the confidence of the predicted top-1 class
const DefaultTop1ScoreColumn = "Top1_score"
