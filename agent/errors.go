package agent

import "errors"

// 错误分类：调用方通过 errors.Is 判断
var (
	// ErrDecode 入站消息不是可识别的 JSON，本地记录后忽略
	ErrDecode = errors.New("decode error")
	// ErrTransport 连接级失败（拒绝、断开、超时），本次运行终止，不重试
	ErrTransport = errors.New("transport error")
	// ErrConfig 配置缺失或非法，启动阶段即失败
	ErrConfig = errors.New("config error")
)
