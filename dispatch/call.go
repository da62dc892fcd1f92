package dispatch

// Call identifies one concrete backend draw entry point.
type Call uint8

const (
	CallNone Call = iota

	// Indexed
	CallDrawElements
	CallDrawElementsBaseVertex
	CallDrawElementsInstanced
	CallDrawElementsInstancedBaseVertex
	CallDrawElementsInstancedBaseInstance
	CallDrawElementsInstancedBaseVertexBaseInstance
	CallMultiDrawElements
	CallMultiDrawElementsBaseVertex
	CallDrawElementsIndirect
	CallMultiDrawElementsIndirect

	// Non-indexed
	CallDrawArrays
	CallDrawArraysInstanced
	CallDrawArraysInstancedBaseInstance
	CallMultiDrawArrays
	CallDrawArraysIndirect
	CallMultiDrawArraysIndirect

	callCount
)

var callNames = [...]string{
	CallNone:                                        "None",
	CallDrawElements:                                "DrawElements",
	CallDrawElementsBaseVertex:                      "DrawElementsBaseVertex",
	CallDrawElementsInstanced:                       "DrawElementsInstanced",
	CallDrawElementsInstancedBaseVertex:             "DrawElementsInstancedBaseVertex",
	CallDrawElementsInstancedBaseInstance:           "DrawElementsInstancedBaseInstance",
	CallDrawElementsInstancedBaseVertexBaseInstance: "DrawElementsInstancedBaseVertexBaseInstance",
	CallMultiDrawElements:                           "MultiDrawElements",
	CallMultiDrawElementsBaseVertex:                 "MultiDrawElementsBaseVertex",
	CallDrawElementsIndirect:                        "DrawElementsIndirect",
	CallMultiDrawElementsIndirect:                   "MultiDrawElementsIndirect",
	CallDrawArrays:                                  "DrawArrays",
	CallDrawArraysInstanced:                         "DrawArraysInstanced",
	CallDrawArraysInstancedBaseInstance:             "DrawArraysInstancedBaseInstance",
	CallMultiDrawArrays:                             "MultiDrawArrays",
	CallDrawArraysIndirect:                          "DrawArraysIndirect",
	CallMultiDrawArraysIndirect:                     "MultiDrawArraysIndirect",
}

// String returns the string representation of a Call.
func (c Call) String() string {
	if c < callCount {
		return callNames[c]
	}
	return "Unknown"
}

// Indexed reports whether the call reads the bound index buffer.
func (c Call) Indexed() bool {
	return c >= CallDrawElements && c <= CallMultiDrawElementsIndirect
}

// Indirect reports whether the call reads its arguments from the GPU.
func (c Call) Indirect() bool {
	switch c {
	case CallDrawElementsIndirect, CallMultiDrawElementsIndirect,
		CallDrawArraysIndirect, CallMultiDrawArraysIndirect:
		return true
	}
	return false
}

// Multi reports whether the call batches several sub-draws.
func (c Call) Multi() bool {
	switch c {
	case CallMultiDrawElements, CallMultiDrawElementsBaseVertex, CallMultiDrawElementsIndirect,
		CallMultiDrawArrays, CallMultiDrawArraysIndirect:
		return true
	}
	return false
}
