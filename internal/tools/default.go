package tools

// Default is the process-wide registry that every built-in handler
// registers itself into via an init func, mirroring the teacher's own
// tool registration pattern. Hosts that want a custom tool set construct
// their own Registry instead of using Default.
var Default = NewRegistry()
