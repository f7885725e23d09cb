package api

// EngineVersion identifies the outcome engine build. It is reported in
// response headers and persisted with every simulation run so that stored
// results can be traced to the probability tables that produced them.
const EngineVersion = "1.0.0"
