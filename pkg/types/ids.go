package types

// PeerID 远端节点标识
//
// 由外部（传输/发现层）提供，不可变，作为所有组件的主键。
type PeerID string

// String 返回完整字符串
func (id PeerID) String() string {
	return string(id)
}

// ShortString 返回用于日志的短标识（前 8 个字符）
func (id PeerID) ShortString() string {
	s := string(id)
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

// IsEmpty 检查是否为空
func (id PeerID) IsEmpty() bool {
	return id == ""
}
