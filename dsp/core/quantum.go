package core

// RenderQuantum is the number of frames processed per graph pull.
const RenderQuantum = 128
